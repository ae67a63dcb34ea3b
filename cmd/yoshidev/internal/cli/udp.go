package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yoshimi/yoshidev/cmd/yoshidev/internal/udpclient"
)

var udpFlags struct {
	host       string
	port       int
	local      string
	bufferSize int
	timeout    time.Duration
	prompt     bool
}

var udpCmd = &cobra.Command{
	Use:   "udp",
	Short: "Send interactive commands to a running instance over UDP",
	Long: `Opens a UDP socket and sends each line typed on stdin as one datagram
to host:port, printing the reply. An empty line ends the session.

Without --port the port is asked for first. Replies longer than
--buffer-size bytes are cut off. With --timeout 0 the client waits for a
reply forever.`,
	Args: cobra.NoArgs,
	RunE: runUDP,
}

func init() {
	udpCmd.Flags().StringVar(&udpFlags.host, "host", "",
		"Target host (default: local machine)")
	udpCmd.Flags().IntVar(&udpFlags.port, "port", 0,
		"Target port (asked for when not set)")
	udpCmd.Flags().StringVar(&udpFlags.local, "local", "",
		"Local bind address, e.g. :7000")
	udpCmd.Flags().IntVar(&udpFlags.bufferSize, "buffer-size", udpclient.DefaultBufferSize,
		"Largest reply accepted, in bytes")
	udpCmd.Flags().DurationVar(&udpFlags.timeout, "timeout", 5*time.Second,
		"Wait per reply (0 waits forever)")
	udpCmd.Flags().BoolVar(&udpFlags.prompt, "prompt", false,
		"Print prompts even when stdin is not a terminal")

	rootCmd.AddCommand(udpCmd)
}

func runUDP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c := udpclient.Config{
		Host:       cfg.UDP.Host,
		Port:       cfg.UDP.Port,
		Local:      cfg.UDP.Local,
		BufferSize: cfg.UDP.BufferSize,
		Timeout:    cfg.UDP.Timeout.Duration,
		Prompt:     udpFlags.prompt || term.IsTerminal(int(os.Stdin.Fd())),
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		c.Host = udpFlags.host
	}
	if flags.Changed("port") {
		c.Port = udpFlags.port
	}
	if flags.Changed("local") {
		c.Local = udpFlags.local
	}
	if flags.Changed("buffer-size") {
		c.BufferSize = udpFlags.bufferSize
	}
	if flags.Changed("timeout") {
		c.Timeout = udpFlags.timeout
	}

	return udpclient.NewSession(c, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
}
