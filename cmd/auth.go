package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vendaflow/venda-cli/config"
	"github.com/vendaflow/venda-cli/credentials"
)

// Auth command flags.
var (
	authPassword       string
	authNonInteractive bool
)

// AuthCmd represents the auth command group.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage database credentials",
	Long: `Manage the stored database password.

The password is stored encrypted in ~/.venda/credentials.yaml. The
encryption key lives in the system keyring (macOS Keychain, Windows
Credential Manager, Linux Secret Service); for CI set VENDA_ENCRYPTION_KEY
to a 64-character hex string.

VENDA_DB_PASSWORD, when set, takes precedence over the stored password.`,
}

// setPasswordCmd stores the database password.
var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the database password",
	Long: `Store the database password, encrypted at rest.

Examples:
  # Interactive (prompts without echo)
  venda auth set-password

  # Non-interactive (for scripts; prefer VENDA_DB_PASSWORD instead)
  venda auth set-password --password s3cret --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForAuth()
		if err != nil {
			return err
		}

		password := authPassword
		if password == "" {
			if authNonInteractive {
				return fmt.Errorf("--password is required with --non-interactive")
			}
			password, err = promptPassword("Senha do banco: ")
			if err != nil {
				return err
			}
		}
		if password == "" {
			return fmt.Errorf("password is empty")
		}

		store, err := credentials.NewStore()
		if err != nil {
			return err
		}

		creds := &credentials.Credentials{DBPassword: password}
		if cfg != nil && cfg.Database != nil {
			creds.DBUser = cfg.Database.User
			creds.DBHost = cfg.Database.Host
		}
		if err := store.Save(creds); err != nil {
			return err
		}

		fmt.Printf("Senha armazenada (%s)\n", store.KeyDescription())
		return nil
	},
}

// statusCmd shows whether credentials are stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}

		if !store.Exists() {
			fmt.Println("Nenhuma credencial armazenada")
			return nil
		}

		creds, err := store.Load()
		if err != nil {
			return fmt.Errorf("stored credentials unreadable: %w", err)
		}

		fmt.Printf("Senha armazenada: %s\n", credentials.MaskCredential(creds.DBPassword))
		if creds.DBUser != "" {
			fmt.Printf("Usuario:          %s\n", creds.DBUser)
		}
		if creds.DBHost != "" {
			fmt.Printf("Host:             %s\n", creds.DBHost)
		}
		fmt.Printf("Atualizada em:    %s\n", creds.LastUpdated.Format("2006-01-02 15:04:05"))
		fmt.Printf("Chave:            %s\n", store.KeyDescription())
		return nil
	},
}

// clearCmd removes stored credentials.
var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		if err := store.Delete(); err != nil {
			return err
		}
		fmt.Println("Credenciais removidas")
		return nil
	},
}

// promptPassword reads a password without echo, falling back to a plain line
// read when stdin is not a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// loadConfigForAuth loads config but tolerates a missing one: storing a
// password before writing the config file is a valid first step.
func loadConfigForAuth() (*config.CLIConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil
	}
	return cfg, nil
}

func init() {
	setPasswordCmd.Flags().StringVar(&authPassword, "password", "", "password value (prompts when omitted)")
	setPasswordCmd.Flags().BoolVar(&authNonInteractive, "non-interactive", false, "fail instead of prompting")

	AuthCmd.AddCommand(setPasswordCmd)
	AuthCmd.AddCommand(authStatusCmd)
	AuthCmd.AddCommand(authClearCmd)
}
