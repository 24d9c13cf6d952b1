package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/portal"
	"github.com/ardnew/softportal/toy"
)

func newToyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toy",
		Short: "Manage stored toy images",
	}
	cmd.AddCommand(newToyInitCmd(opts), newToyDumpCmd(opts), newToyListCmd(opts))
	return cmd
}

func newToyInitCmd(opts *options) *cobra.Command {
	var (
		size  int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init <slot>",
		Short: "Provision a blank image for a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			if size == 0 {
				size = opts.cfg.Storage.ToySize
			}
			if size <= 0 || size%toy.BlockSize != 0 {
				return fmt.Errorf("size %d is not a positive multiple of %d: %w", size, toy.BlockSize, pkg.ErrInvalidParameter)
			}

			store, err := opts.cfg.Storage.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			key := opts.cfg.Storage.Keys().Key(index)
			if !force {
				_, err := store.Load(key)
				if err == nil {
					return fmt.Errorf("%s exists (use --force to overwrite): %w", key, pkg.ErrBusy)
				}
				if !errors.Is(err, pkg.ErrToyNotFound) {
					return err
				}
			}

			if err := store.Save(key, toy.Blank(size)); err != nil {
				return err
			}
			pkg.LogInfo(pkg.ComponentToy, "toy image created", "key", key, "bytes", size)
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "image size in bytes (default storage.toy_size)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing image")
	return cmd
}

func newToyDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <slot>",
		Short: "Hex-dump the stored image for a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseSlot(args[0])
			if err != nil {
				return err
			}

			store, err := opts.cfg.Storage.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := toy.Load(store, opts.cfg.Storage.Keys().Key(index))
			if err != nil {
				return err
			}

			buf := make([]byte, toy.BlockSize)
			dumper := hex.Dumper(cmd.OutOrStdout())
			for i := 0; i < t.Blocks(); i++ {
				if _, err := t.ReadBlock(i, buf); err != nil {
					return err
				}
				if _, err := dumper.Write(buf); err != nil {
					return err
				}
			}
			return dumper.Close()
		},
	}
}

func newToyListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored toy images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.cfg.Storage.Open()
			if err != nil {
				return err
			}
			defer store.Close()

			lister, ok := store.(toy.Lister)
			if !ok {
				return fmt.Errorf("storage driver %q cannot list images: %w", opts.cfg.Storage.Driver, pkg.ErrInvalidParameter)
			}
			keys, err := lister.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

// parseSlot parses a slot index argument.
func parseSlot(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 || index >= portal.MaxSlots {
		return 0, fmt.Errorf("slot %q: %w", s, pkg.ErrInvalidSlot)
	}
	return index, nil
}
