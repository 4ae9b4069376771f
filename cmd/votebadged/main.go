package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/body"
	"github.com/votebadge/votebadge/internal/chain"
	"github.com/votebadge/votebadge/internal/election"
	"github.com/votebadge/votebadge/internal/identity"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	app := &cli.App{
		Name:  "votebadged",
		Usage: "node-local governance ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Value: ".", Usage: "directory holding seeds and chains"},
			&cli.StringFlag{Name: "name", Value: "node", Usage: "chain and seed name"},
			&cli.IntFlag{Name: "difficulty", Value: block.MinDifficulty, Usage: "leading zero bytes required of block hashes (1-4)"},
		},
		Commands: []*cli.Command{
			initCommand(logger),
			appendCommand(logger),
			verifyCommand(logger),
			showCommand(logger),
			tallyCommand(logger),
			serveCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func initCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create the node identity and its genesis block",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "genesis-seed", Value: "genesis.seed", Usage: "genesis authority seed file"},
		},
		Action: func(c *cli.Context) error {
			dataDir := c.String("data-dir")
			name := c.String("name")

			node, err := identity.LoadOrCreate(filepath.Join(dataDir, name+".seed"))
			if err != nil {
				return fmt.Errorf("loading node seed: %w", err)
			}
			authority, err := identity.LoadOrCreate(c.String("genesis-seed"))
			if err != nil {
				return fmt.Errorf("loading genesis seed: %w", err)
			}

			ctx := interruptContext()
			genesis, err := block.CreateGenesis(ctx, authority.SigningKey, node.Address, node.CurvePublic, c.Int("difficulty"))
			if err != nil {
				return fmt.Errorf("building genesis block: %w", err)
			}
			mgr, err := chain.NewManager(name, genesis, authority.Address, c.Int("difficulty"), logger)
			if err != nil {
				return err
			}
			if err := mgr.Save(dataDir); err != nil {
				return err
			}

			fmt.Printf("node address:      %s\n", hex.EncodeToString(node.Address))
			fmt.Printf("genesis authority: %s\n", hex.EncodeToString(authority.Address))
			logger.Info().Str("chain", name).Msg("chain initialized; delete the genesis seed once every node is admitted")
			return nil
		},
	}
}

func appendCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "append",
		Usage: "sign and append a block",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "body-file", Usage: "file holding a packed action body"},
			&cli.StringFlag{Name: "broadcast", Usage: "append a broadcast with this payload"},
		},
		Action: func(c *cli.Context) error {
			dataDir := c.String("data-dir")
			name := c.String("name")

			node, err := identity.LoadSeed(filepath.Join(dataDir, name+".seed"))
			if err != nil {
				return fmt.Errorf("loading node seed: %w", err)
			}
			mgr, err := openChain(c, logger)
			if err != nil {
				return err
			}

			var payload []byte
			switch {
			case c.IsSet("body-file"):
				payload, err = os.ReadFile(c.String("body-file"))
				if err != nil {
					return err
				}
			case c.IsSet("broadcast"):
				payload, err = (&body.Broadcast{Payload: []byte(c.String("broadcast"))}).Pack()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --body-file or --broadcast is required")
			}

			b, err := mgr.Append(interruptContext(), node.SigningKey, payload)
			if err != nil {
				return err
			}
			if err := mgr.Save(dataDir); err != nil {
				return err
			}
			fmt.Printf("block %d appended: %s\n", mgr.Len()-1, hex.EncodeToString(b.Hash))
			return nil
		},
	}
}

func verifyCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "verify the stored chain",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "genesis-address", Usage: "hex genesis authority address to enforce"},
		},
		Action: func(c *cli.Context) error {
			mgr, err := openChain(c, logger)
			if err != nil {
				return err
			}
			if !mgr.Verify() {
				return cli.Exit("chain verification FAILED", 1)
			}
			fmt.Printf("chain ok: %d blocks\n", mgr.Len())
			return nil
		},
	}
}

func showCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "list the chain's blocks and their actions",
		Action: func(c *cli.Context) error {
			mgr, err := openChain(c, logger)
			if err != nil {
				return err
			}
			genesis, err := mgr.Genesis()
			if err != nil {
				return err
			}
			fmt.Printf("%4d  genesis  node=%s\n", 0, hex.EncodeToString(genesis.NodeAddress))
			for i := 1; i < mgr.Len(); i++ {
				b, err := mgr.BlockAt(i)
				if err != nil {
					return err
				}
				label := "(opaque)"
				if action, err := body.Unpack(b.Body); err == nil {
					label = body.TagName(action.Tag())
				}
				fmt.Printf("%4d  %s  %s\n", i, hex.EncodeToString(b.Hash), label)
			}
			return nil
		},
	}
}

func tallyCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "tally",
		Usage: "tally a ballot collection and append the result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "collection", Required: true, Usage: "hex hash of the COLLECT_BALLOTS block"},
			&cli.BoolFlag{Name: "dry-run", Usage: "print the tally without appending it"},
		},
		Action: func(c *cli.Context) error {
			dataDir := c.String("data-dir")
			name := c.String("name")

			mgr, err := openChain(c, logger)
			if err != nil {
				return err
			}
			index := election.NewIndex(logger)
			if err := index.ScanChain(mgr.Snapshot()); err != nil {
				return err
			}

			var collection [32]byte
			raw, err := hex.DecodeString(c.String("collection"))
			if err != nil || len(raw) != 32 {
				return fmt.Errorf("--collection must be a 64-character hex hash")
			}
			copy(collection[:], raw)

			action, err := index.Tally(collection)
			if err != nil {
				return err
			}
			payload, err := action.Pack()
			if err != nil {
				return err
			}
			if c.Bool("dry-run") {
				fmt.Printf("%s\n", hex.EncodeToString(payload))
				return nil
			}

			node, err := identity.LoadSeed(filepath.Join(dataDir, name+".seed"))
			if err != nil {
				return err
			}
			b, err := mgr.Append(interruptContext(), node.SigningKey, payload)
			if err != nil {
				return err
			}
			if err := mgr.Save(dataDir); err != nil {
				return err
			}
			fmt.Printf("tally appended: %s\n", hex.EncodeToString(b.Hash))
			return nil
		},
	}
}

func serveCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve prometheus metrics while the node operates",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Value: ":9311", Usage: "metrics listen address"},
		},
		Action: func(c *cli.Context) error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: c.String("listen"), Handler: mux}

			ctx := interruptContext()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			logger.Info().Str("listen", c.String("listen")).Msg("serving metrics")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

// openChain loads the stored chain, enforcing --genesis-address when given
// and otherwise trusting the stored genesis block's own authority address.
func openChain(c *cli.Context, logger zerolog.Logger) (*chain.Manager, error) {
	dataDir := c.String("data-dir")
	name := c.String("name")

	blocks, err := chain.LoadChain(dataDir, name)
	if err != nil {
		return nil, err
	}

	var authority []byte
	if addr := c.String("genesis-address"); addr != "" {
		authority, err = hex.DecodeString(addr)
		if err != nil {
			return nil, fmt.Errorf("parsing --genesis-address: %w", err)
		}
	} else {
		genesis, err := block.UnpackGenesis(blocks[0])
		if err != nil {
			return nil, err
		}
		authority = genesis.Address
	}
	return chain.OpenManager(name, blocks, authority, c.Int("difficulty"), logger)
}

func interruptContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		cancel()
	}()
	return ctx
}
