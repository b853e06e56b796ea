package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the offline action queue",
	RunE:  runQueueList,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued actions in replay order",
	RunE:  runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add [kind]",
	Short: "Queue an action",
	Long: `Queues an action for replay. Kinds:
  add_to_cart, update_cart_item, clear_cart, create_order,
  toggle_favorite, generic_request

generic_request also needs --endpoint and --method.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueueAdd,
}

var queueShowCmd = &cobra.Command{
	Use:   "show [action-id]",
	Short: "Show one queued action",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueShow,
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove [action-id]",
	Short: "Remove a queued action",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRemove,
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry [action-id]",
	Short: "Reset failed actions to pending",
	Long:  `Resets one failed action, or every failed action when no ID is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQueueRetry,
}

// Flags for queue subcommands.
var (
	queueStatusFilter string
	queuePayload      string
	queueEndpoint     string
	queueMethod       string
)

func init() {
	queueListCmd.Flags().StringVar(&queueStatusFilter, "status", "", "Only show actions with this status")
	queueAddCmd.Flags().StringVarP(&queuePayload, "payload", "p", "", "JSON payload")
	queueAddCmd.Flags().StringVar(&queueEndpoint, "endpoint", "", "Endpoint for generic_request, relative to the API root")
	queueAddCmd.Flags().StringVar(&queueMethod, "method", "", "HTTP method for generic_request")

	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueShowCmd)
	queueCmd.AddCommand(queueRemoveCmd)
	queueCmd.AddCommand(queueRetryCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	if queueService == nil {
		return errNotConfigured("queue")
	}

	actions, err := queueService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if queueStatusFilter != "" {
		status := domain.ActionStatus(queueStatusFilter)
		if !status.IsValid() {
			return fmt.Errorf("unknown status %q", queueStatusFilter)
		}
		filtered := actions[:0]
		for _, a := range actions {
			if a.Status == status {
				filtered = append(filtered, a)
			}
		}
		actions = filtered
	}

	return render(cmd, actions, func(w io.Writer) {
		if len(actions) == 0 {
			fprintf(w, "Queue is empty.\n")
			return
		}
		fprintf(w, "%-36s  %-16s  %-10s  %-7s  %s\n", "ID", "KIND", "STATUS", "RETRIES", "CREATED")
		for _, a := range actions {
			fprintf(w, "%-36s  %-16s  %-10s  %d/%-5d  %s\n",
				a.ID, a.Kind, a.Status, a.RetryCount, a.MaxRetries, formatWhen(a.CreatedAt))
			if a.LastError != "" {
				fprintf(w, "    last error: %s\n", truncate(a.LastError, 80))
			}
		}
	})
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	if queueService == nil {
		return errNotConfigured("queue")
	}

	req := domain.EnqueueRequest{
		Kind:     domain.ActionKind(args[0]),
		Endpoint: queueEndpoint,
		Method:   strings.ToUpper(queueMethod),
	}
	if queuePayload != "" {
		if !json.Valid([]byte(queuePayload)) {
			return errors.New("payload is not valid JSON")
		}
		req.Payload = json.RawMessage(queuePayload)
	}

	action, err := queueService.Enqueue(commandContext(cmd), req)
	if err != nil {
		return fmt.Errorf("failed to queue action: %w", err)
	}

	return render(cmd, action, func(w io.Writer) {
		fprintf(w, "Queued %s action %s.\n", action.Kind, action.ID)
	})
}

func runQueueShow(cmd *cobra.Command, args []string) error {
	if queueService == nil {
		return errNotConfigured("queue")
	}

	action, err := queueService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get action: %w", err)
	}

	return render(cmd, action, func(w io.Writer) {
		fprintf(w, "ID:       %s\n", action.ID)
		fprintf(w, "Kind:     %s\n", action.Kind)
		fprintf(w, "Status:   %s\n", action.Status)
		fprintf(w, "Retries:  %d/%d\n", action.RetryCount, action.MaxRetries)
		fprintf(w, "Created:  %s\n", formatWhen(action.CreatedAt))
		if action.Endpoint != "" {
			fprintf(w, "Request:  %s %s\n", action.Method, action.Endpoint)
		}
		if len(action.Payload) > 0 {
			fprintf(w, "Payload:  %s\n", action.Payload)
		}
		if action.LastError != "" {
			fprintf(w, "Error:    %s\n", action.LastError)
		}
	})
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	if queueService == nil {
		return errNotConfigured("queue")
	}

	if err := queueService.Dequeue(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to remove action: %w", err)
	}

	cmd.Printf("Removed action %s.\n", args[0])
	return nil
}

func runQueueRetry(cmd *cobra.Command, args []string) error {
	if queueService == nil {
		return errNotConfigured("queue")
	}

	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	n, err := queueService.RetryFailed(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to retry: %w", err)
	}

	cmd.Printf("Reset %d failed actions to pending.\n", n)
	return nil
}
