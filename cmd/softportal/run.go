package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ardnew/softportal/admin"
	"github.com/ardnew/softportal/config"
	"github.com/ardnew/softportal/hal/fifo"
	"github.com/ardnew/softportal/hid"
	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/portal"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		busDir    string
		adminAddr string
		inserts   []int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the portal on the FIFO bus until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if busDir != "" {
				cfg.Transport.BusDir = busDir
			}
			if adminAddr != "" {
				cfg.Admin.Enabled = true
				cfg.Admin.Addr = adminAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, inserts)
		},
	}

	cmd.Flags().StringVar(&busDir, "bus-dir", "", "FIFO bus directory (overrides transport.bus_dir)")
	cmd.Flags().StringVar(&adminAddr, "admin", "", "serve the admin API on this address")
	cmd.Flags().IntSliceVar(&inserts, "insert", nil, "slots to place toys on at startup")
	return cmd
}

// serve runs the engine, and the admin API when enabled, until ctx is done.
func serve(ctx context.Context, cfg config.Config, inserts []int) error {
	store, err := cfg.Storage.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	busDir := cfg.Transport.BusDir
	if err := os.MkdirAll(busDir, 0o755); err != nil {
		return fmt.Errorf("create bus dir: %w", err)
	}

	pc := cfg.PortalConfig()
	pc.OnError = func(err error) {
		pkg.LogError(pkg.ComponentPortal, "portal fault", "error", err)
	}

	p, err := portal.New(pc, fifo.New(busDir, hid.PortalReportDescriptor), store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	adminErr := make(chan error, 1)
	if cfg.Admin.Enabled {
		go func() {
			err := admin.New(p).ListenAndServe(ctx, cfg.Admin.Addr)
			if err != nil {
				cancel()
			}
			adminErr <- err
		}()
	} else {
		adminErr <- nil
	}

	go func() {
		for _, index := range inserts {
			if err := p.Insert(ctx, index); err != nil {
				pkg.LogWarn(pkg.ComponentPortal, "startup insert failed", "slot", index, "error", err)
			}
		}
	}()

	pkg.LogInfo(pkg.ComponentPortal, "starting portal",
		"busDir", busDir,
		"storage", cfg.Storage.Driver,
		"slots", pc.Slots)

	err = p.Run(ctx)
	cancel()
	return errors.Join(err, <-adminErr)
}
