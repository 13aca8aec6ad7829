package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pillbox/core/model"
)

var (
	schedHour   int
	schedMinute int
	schedBuzzer bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Set the daily pill time in the desired shadow",
	RunE:  setSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&schedHour, "hour", model.Unset, "local hour 0-23, -1 to unset")
	scheduleCmd.Flags().IntVar(&schedMinute, "minute", model.Unset, "local minute 0-59, -1 to unset")
	scheduleCmd.Flags().BoolVar(&schedBuzzer, "buzzer", false, "enable the alarm buzzer")
	_ = scheduleCmd.MarkFlagRequired("hour")
	_ = scheduleCmd.MarkFlagRequired("minute")
	rootCmd.AddCommand(scheduleCmd)
}

func buildDelta(hour, minute int, buzzer bool) (model.DesiredDelta, error) {
	if hour < model.Unset || hour > 23 {
		return model.DesiredDelta{}, fmt.Errorf("hour %d out of range", hour)
	}
	if minute < model.Unset || minute > 59 {
		return model.DesiredDelta{}, fmt.Errorf("minute %d out of range", minute)
	}
	return model.DesiredDelta{Hour: &hour, Minute: &minute, BuzzerEnabled: &buzzer}, nil
}

func setSchedule(cmd *cobra.Command, args []string) error {
	d, err := buildDelta(schedHour, schedMinute, schedBuzzer)
	if err != nil {
		return err
	}
	pub, err := dialBench("set-schedule")
	if err != nil {
		return err
	}
	defer pub.Close()
	if err := pub.SetDesired(d); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "desired schedule %02d:%02d buzzer=%t\n", schedHour, schedMinute, schedBuzzer)
	return err
}
