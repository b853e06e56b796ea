package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notes"},
	Short:   "List sync notifications",
	RunE:    runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark one notification, or all, as read",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all notifications",
	RunE:  runNotificationsClear,
}

// Flags for notifications.
var (
	notificationsUnread bool
	notificationsLimit  int
)

func init() {
	notificationsCmd.Flags().BoolVarP(&notificationsUnread, "unread", "u", false, "Only unread notifications")
	notificationsCmd.Flags().IntVarP(&notificationsLimit, "limit", "n", 20, "Maximum notifications to show")

	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsClearCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	if notificationService == nil {
		return errNotConfigured("notification")
	}

	items, err := notificationService.List(commandContext(cmd), notificationsUnread, notificationsLimit)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	return render(cmd, items, func(w io.Writer) {
		if len(items) == 0 {
			fprintf(w, "No notifications.\n")
			return
		}
		for _, n := range items {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			fprintf(w, "%s %s [%s] %s: %s\n", marker, formatWhen(n.CreatedAt), n.Type, n.Title, n.Message)
			fprintf(w, "  id: %s\n", n.ID)
		}
	})
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	if notificationService == nil {
		return errNotConfigured("notification")
	}

	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	if err := notificationService.MarkRead(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}

	if id == "" {
		cmd.Println("Marked all notifications read.")
	} else {
		cmd.Printf("Marked %s read.\n", id)
	}
	return nil
}

func runNotificationsClear(cmd *cobra.Command, _ []string) error {
	if notificationService == nil {
		return errNotConfigured("notification")
	}
	if err := notificationService.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	cmd.Println("Notifications cleared.")
	return nil
}
