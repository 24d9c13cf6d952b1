package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardnew/softportal/hal/fifo"
	"github.com/ardnew/softportal/hid"
	"github.com/ardnew/softportal/pkg"
)

func newSendCmd(_ *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <bus-dir> <hex>",
		Short: "Send one report to a running portal and print the response",
		Long: `Send one output report to the portal on bus-dir. The hex payload may
contain spaces and is zero-padded to the report length; for example
"52" sends a Reset and "53" a Status request.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := parseReport(args[1])
			if err != nil {
				return err
			}

			host, err := fifo.Discover(args[0])
			if err != nil {
				return err
			}
			defer host.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := host.SendReport(ctx, report); err != nil {
				return err
			}
			pkg.LogDebug(pkg.ComponentHAL, "report sent", "dir", host.DeviceDir(), "report", hex.EncodeToString(report))

			buf := make([]byte, fifo.MaxReportSize)
			n, err := host.ReceiveReport(ctx, buf)
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				fmt.Fprintln(cmd.OutOrStdout(), "no response")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatReport(buf[:n]))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "how long to wait for a response")
	return cmd
}

// parseReport decodes a hex report and pads it to the report length.
func parseReport(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", s, err)
	}
	if len(data) == 0 || len(data) > hid.ReportLength {
		return nil, fmt.Errorf("report of %d bytes: %w", len(data), pkg.ErrInvalidParameter)
	}
	report := make([]byte, hid.ReportLength)
	copy(report, data)
	return report, nil
}

// formatReport renders a report as space-separated hex bytes.
func formatReport(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}
