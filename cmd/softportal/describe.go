package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/softportal/hid"
)

func newDescribeCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the emulated device's USB identity and HID descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := hid.ParseUsage(hid.PortalReportDescriptor)
			if err != nil {
				return err
			}

			desc := hid.NewHIDDescriptor(hid.PortalReportDescriptor)
			var buf [hid.HIDDescriptorSize]byte
			n := desc.MarshalTo(buf[:])

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "device:      %s %s (%04x:%04x)\n", hid.Manufacturer, hid.Product, hid.VendorID, hid.ProductID)
			fmt.Fprintf(w, "usage:       page 0x%04X usage 0x%02X\n", usage.UsagePage, usage.Usage)
			fmt.Fprintf(w, "reports:     in %d bytes, out %d bytes\n", usage.InputBytes, usage.OutputBytes)
			fmt.Fprintf(w, "hid:         %s\n", formatReport(buf[:n]))
			fmt.Fprintf(w, "report desc: %s\n", formatReport(hid.PortalReportDescriptor))
			return nil
		},
	}
}
