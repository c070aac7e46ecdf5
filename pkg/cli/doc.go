// Package cli holds what the paracord-gateway commands share: error types
// that map to exit statuses, and result printing.
//
// Commands that print results accept --format text|json:
//
//	format, err := cli.ParseFormat(flagValue)
//	if err != nil {
//		return err
//	}
//	return cli.NewPrinter(format, cmd.OutOrStdout()).Print(result)
//
// Wrap configuration failures with WrapConfigError so ExitCode returns
// ExitConfig for them.
package cli
