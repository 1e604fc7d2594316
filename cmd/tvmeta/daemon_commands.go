package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tvmeta/internal/daemonctl"
)

type daemonStatusOutput struct {
	Running  bool   `json:"running"`
	PID      int    `json:"pid,omitempty"`
	LockPath string `json:"lock_path"`
	PIDPath  string `json:"pid_path"`
}

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect or stop a running tvmetad",
	}
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	return daemonCmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether tvmetad is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			running, pid, err := daemonctl.ProcessInfo(cfg)
			if err != nil {
				return err
			}
			out := daemonStatusOutput{
				Running:  running,
				PID:      pid,
				LockPath: daemonctl.LockPath(cfg),
				PIDPath:  daemonctl.PIDPath(cfg),
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}
			pidLabel := "-"
			if pid > 0 {
				pidLabel = fmt.Sprintf("%d", pid)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
				{"Running", yesNo(running)},
				{"PID", pidLabel},
				{"Lock", out.LockPath},
			}))
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop tvmetad, force-killing it after the grace period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := daemonctl.StopAndTerminate(cfg, grace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "tvmetad is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(cmd.OutOrStdout(), "tvmetad (pid %d) did not exit within %s; killed\n", result.PID, grace)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tvmetad (pid %d) stopped\n", result.PID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "Time to wait for a clean shutdown")
	return cmd
}
