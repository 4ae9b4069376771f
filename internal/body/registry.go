package body

// Control characters. Each block body carries exactly one governance action,
// identified by its first byte.
const (
	TagProposalPlurality byte = 0x00
	TagProposalIRV       byte = 0x01
	TagProposalIRVCoombs byte = 0x02
	TagProposalSTVDroop  byte = 0x03
	TagProposalSTVHare   byte = 0x04
	TagProposalApproval  byte = 0x05
	TagProposalCAV       byte = 0x06
	TagProposalBorda     byte = 0x07
	TagProposalDowdall   byte = 0x08
	TagProposalBucklin   byte = 0x09
	TagProposalScore     byte = 0x0A
	TagProposalSTAR      byte = 0x0B
	TagProposalCopeland  byte = 0x0C
	TagProposalSchulze   byte = 0x0D
	TagProposalSortition byte = 0x0E
	TagProposalMMP       byte = 0x0F

	TagBallotPlurality byte = 0x10
	TagBallotRanked    byte = 0x11
	TagBallotApproval  byte = 0x12
	TagBallotScore     byte = 0x13
	TagBallotMMP       byte = 0x14

	TagNominate       byte = 0x15
	TagCollectBallots byte = 0x16
	TagTallyOfVotes   byte = 0x17
	TagTallyNewAlg    byte = 0x18
	TagDeclareParty   byte = 0x19
	TagPartyMatter    byte = 0x1A
	TagMessage        byte = 0x1B
	TagBroadcast      byte = 0x1C
	TagReference      byte = 0x1D
	TagOther          byte = 0x1F
	TagPayRespects    byte = 0x46
)

var tagNames = map[byte]string{
	TagProposalPlurality: "PROPOSAL_PLURALITY",
	TagProposalIRV:       "PROPOSAL_IRV",
	TagProposalIRVCoombs: "PROPOSAL_IRV_COOMBS",
	TagProposalSTVDroop:  "PROPOSAL_STV_DROOP",
	TagProposalSTVHare:   "PROPOSAL_STV_HARE",
	TagProposalApproval:  "PROPOSAL_APPROVAL",
	TagProposalCAV:       "PROPOSAL_CAV",
	TagProposalBorda:     "PROPOSAL_BORDA",
	TagProposalDowdall:   "PROPOSAL_DOWDALL",
	TagProposalBucklin:   "PROPOSAL_BUCKLIN",
	TagProposalScore:     "PROPOSAL_SCORE",
	TagProposalSTAR:      "PROPOSAL_STAR",
	TagProposalCopeland:  "PROPOSAL_COPELAND",
	TagProposalSchulze:   "PROPOSAL_SCHULZE",
	TagProposalSortition: "PROPOSAL_SORTITION",
	TagProposalMMP:       "PROPOSAL_MMP",
	TagBallotPlurality:   "BALLOT_PLURALITY",
	TagBallotRanked:      "BALLOT_RANKED",
	TagBallotApproval:    "BALLOT_APPROVAL",
	TagBallotScore:       "BALLOT_SCORE",
	TagBallotMMP:         "BALLOT_MMP",
	TagNominate:          "NOMINATE",
	TagCollectBallots:    "COLLECT_BALLOTS",
	TagTallyOfVotes:      "TALLY_OF_VOTES",
	TagTallyNewAlg:       "TALLY_NEW_ALG",
	TagDeclareParty:      "DECLARE_PARTY",
	TagPartyMatter:       "PARTY_MATTER",
	TagMessage:           "MESSAGE",
	TagBroadcast:         "BROADCAST",
	TagReference:         "REFERENCE",
	TagOther:             "OTHER",
	TagPayRespects:       "PAY_RESPECTS",
}

// TagName returns the registry name of a control character, or "" if the tag
// is unassigned.
func TagName(tag byte) string {
	return tagNames[tag]
}

// IsProposalTag reports whether tag names a proposal action.
func IsProposalTag(tag byte) bool {
	return tag <= TagProposalMMP
}

// IsBallotTag reports whether tag names a ballot action.
func IsBallotTag(tag byte) bool {
	return tag >= TagBallotPlurality && tag <= TagBallotMMP
}

// singleWinnerMethods are the proposal methods that elect exactly one winner;
// their proposals carry no number_of_winners byte on the wire.
var singleWinnerMethods = map[byte]bool{
	TagProposalIRV:       true,
	TagProposalIRVCoombs: true,
	TagProposalBorda:     true,
	TagProposalDowdall:   true,
	TagProposalBucklin:   true,
	TagProposalScore:     true,
	TagProposalSTAR:      true,
	TagProposalCopeland:  true,
	TagProposalSchulze:   true,
}

// MethodElectsSingleWinner reports whether the proposal method elects exactly
// one winner.
func MethodElectsSingleWinner(method byte) bool {
	return singleWinnerMethods[method]
}
