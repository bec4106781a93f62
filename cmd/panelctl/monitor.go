package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"panelcode-go/services/ota"
)

var (
	monitorAll    bool
	monitorPrefix string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print decoded panel frames",
	Long: `Print every panel protocol frame seen on the bus, one per line, in
candump form followed by its decoded meaning. Frames outside the panel
protocol are hidden unless --all is given.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVarP(&monitorAll, "all", "a", false, "Also print frames outside the panel protocol")
	monitorCmd.Flags().StringVar(&monitorPrefix, "prefix", ota.DefaultPrefix, "Host name prefix for OTA triggers")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	tr, info, err := OpenTransport(ctx)
	if err != nil {
		return err
	}
	defer tr.Close()
	fmt.Fprintln(os.Stderr, "Connected:", info)

	for {
		f, err := tr.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		d := Describe(f, monitorPrefix)
		if d == "" && !monitorAll {
			continue
		}
		fmt.Printf("%s  %-20s %s\n", time.Now().Format("15:04:05.000"), f.String(), d)
	}
}
