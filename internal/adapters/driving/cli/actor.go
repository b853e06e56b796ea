package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var actorCmd = &cobra.Command{
	Use:   "actor",
	Short: "Manage the authenticated storefront user",
	RunE:  runActorShow,
}

var actorLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the user and token used for remote calls",
	Long: `Stores the storefront user whose bearer token signs remote calls.
The token is read from the terminal without echo unless --token-stdin is set,
in which case it is read from the first line of standard input.

Owners, partners and admins also sync orders, customers, suppliers
and distributors.`,
	RunE: runActorLogin,
}

var actorLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored user",
	RunE:  runActorLogout,
}

var actorShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored user",
	RunE:  runActorShow,
}

// Flags for actor login.
var (
	actorID         string
	actorName       string
	actorRole       string
	actorTokenStdin bool
)

// readToken is swapped in tests.
var readToken = readPassword

func init() {
	actorLoginCmd.Flags().StringVar(&actorID, "id", "", "Remote user ID (required)")
	actorLoginCmd.Flags().StringVar(&actorName, "name", "", "Display name")
	actorLoginCmd.Flags().StringVar(&actorRole, "role", string(domain.RoleCustomer),
		"Role: owner, partner, admin or customer")
	actorLoginCmd.Flags().BoolVar(&actorTokenStdin, "token-stdin", false, "Read the token from standard input")

	actorCmd.AddCommand(actorLoginCmd)
	actorCmd.AddCommand(actorLogoutCmd)
	actorCmd.AddCommand(actorShowCmd)
	rootCmd.AddCommand(actorCmd)
}

func runActorLogin(cmd *cobra.Command, _ []string) error {
	if actorService == nil {
		return errNotConfigured("actor")
	}
	if actorID == "" {
		return errors.New("--id is required")
	}

	var token string
	if actorTokenStdin {
		token = readLine(cmd.InOrStdin())
	} else {
		cmd.Print("Token: ")
		token = readToken()
		cmd.Println()
	}
	if token == "" {
		return errors.New("token is required")
	}

	actor := domain.Actor{
		ID:    actorID,
		Name:  actorName,
		Role:  domain.Role(strings.ToLower(actorRole)),
		Token: token,
	}
	if err := actorService.Login(commandContext(cmd), actor); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in as %s (%s).\n", actor.ID, actor.Role)
	return nil
}

func runActorLogout(cmd *cobra.Command, _ []string) error {
	if actorService == nil {
		return errNotConfigured("actor")
	}
	if err := actorService.Logout(commandContext(cmd)); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Logged out.")
	return nil
}

func runActorShow(cmd *cobra.Command, _ []string) error {
	if actorService == nil {
		return errNotConfigured("actor")
	}

	actor, err := actorService.Current(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get actor: %w", err)
	}

	return render(cmd, actor, func(w io.Writer) {
		if actor == nil {
			fprintf(w, "Not logged in.\n")
			return
		}
		fprintf(w, "ID:       %s\n", actor.ID)
		if actor.Name != "" {
			fprintf(w, "Name:     %s\n", actor.Name)
		}
		fprintf(w, "Role:     %s\n", actor.Role)
		fprintf(w, "Elevated: %t\n", actor.IsElevated())
	})
}

func readLine(r io.Reader) string {
	input, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(os.Stdin)
}
