package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pillbox/core/model"
)

var (
	sendColor string
	sendID    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Publish a dispense command to the device",
	RunE:  sendCommand,
}

func init() {
	sendCmd.Flags().StringVar(&sendColor, "color", "", "pill color to dispense")
	sendCmd.Flags().Uint64Var(&sendID, "id", 0, "command id (random when omitted)")
	_ = sendCmd.MarkFlagRequired("color")
	rootCmd.AddCommand(sendCmd)
}

func buildCommand(color string, id uint64, idSet bool) model.Command {
	if !idSet {
		id = newCommandID()
	}
	return model.Command{
		Action:    model.ActionDispense,
		Color:     strings.ToUpper(strings.TrimSpace(color)),
		CommandID: id,
		Source:    model.SourceTopic,
	}
}

func sendCommand(cmd *cobra.Command, args []string) error {
	c := buildCommand(sendColor, sendID, cmd.Flags().Changed("id"))
	pub, err := dialBench("send-command")
	if err != nil {
		return err
	}
	defer pub.Close()
	if err := pub.SendCommand(c); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %s command_id=%d\n", c.Color, c.CommandID)
	return err
}
