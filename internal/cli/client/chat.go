package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Message            string          `json:"message"`
	QueryType          string          `json:"query_type"`
	NeedsClarification bool            `json:"needs_clarification"`
	Spec               json.RawMessage `json:"spec,omitempty"`
}

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant",
		Long: `Sends a message to the assistant, or starts an interactive session
when no message is given. Turns in the same session share order state,
so the assistant remembers what you already specified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			if len(args) == 1 {
				return runChatTurn(api, sessionID, args[0], outputJSON)
			}
			return runChatLoop(api, sessionID)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (generated if empty)")

	return cmd
}

func runChatTurn(api *APIClient, sessionID, message string, outputJSON bool) error {
	resp, err := sendMessage(api, sessionID, message)
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Message)
	return nil
}

func runChatLoop(api *APIClient, sessionID string) error {
	fmt.Printf("session %s (empty line to quit)\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}

		resp, err := sendMessage(api, sessionID, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", resp.Message)
	}

	return scanner.Err()
}

func sendMessage(api *APIClient, sessionID, message string) (*ChatResponse, error) {
	resp, err := api.Post("/chat", ChatRequest{
		Message:   message,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Data, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &chatResp, nil
}
