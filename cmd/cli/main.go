package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// apiClient is a thin JSON client for the ledger HTTP API.
type apiClient struct {
	baseURL        string
	http           *http.Client
	idempotencyKey string
}

// apiError is a non-2xx response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body)
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, &apiError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	return respBody, nil
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "bankledger-cli",
		Short:         "Bank ledger CLI tool",
		Long:          `A command line interface for interacting with the bank ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.http = &http.Client{Timeout: timeout}
		},
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&client.idempotencyKey, "idempotency-key", "", "Idempotency-Key header for mutating requests")

	rootCmd.AddCommand(
		accountCmd(client),
		movementCmd(client, "deposit", "Deposit money into an account", "deposits"),
		movementCmd(client, "withdraw", "Withdraw money from an account", "withdrawals"),
		transferCmd(client),
		loanCmd(client),
		statementCmd(client),
		balanceCmd(client),
		reconcileCmd(client),
		ledgerCmd(client),
		adminCmd(client),
	)

	return rootCmd
}

// call runs a request and prints the JSON response.
func call(cmd *cobra.Command, client *apiClient, method, path string, query url.Values, body any) error {
	resp, err := client.do(cmd.Context(), method, path, query, body)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func accountCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var holder, email, number, opening string
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client, http.MethodPost, "/api/v1/accounts", nil, map[string]string{
				"holder_name":     holder,
				"email":           email,
				"account_number":  number,
				"opening_balance": opening,
			})
		},
	}
	openCmd.Flags().StringVar(&holder, "holder", "", "Account holder name")
	openCmd.Flags().StringVar(&email, "email", "", "Account holder email")
	openCmd.Flags().StringVar(&number, "number", "", "10-digit account number (generated when empty)")
	openCmd.Flags().StringVar(&opening, "opening-balance", "0", "Opening balance")
	_ = openCmd.MarkFlagRequired("holder")
	_ = openCmd.MarkFlagRequired("email")

	getCmd := &cobra.Command{
		Use:   "get <number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			return call(cmd, client, http.MethodGet, "/api/v1/accounts", q, nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(openCmd, getCmd, listCmd)
	return cmd
}

func movementCmd(client *apiClient, use, short, resource string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <number> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/"+resource, nil,
				map[string]string{"amount": args[1]})
		},
	}
}

func transferCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/transfers", nil,
				map[string]string{"to_account_number": args[1], "amount": args[2]})
		},
	}
}

func loanCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "request <number> <amount>",
			Short: "Request a loan",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, client, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/loans", nil,
					map[string]string{"amount": args[1]})
			},
		},
		&cobra.Command{
			Use:   "approve <loan-id>",
			Short: "Approve and disburse a requested loan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, client, http.MethodPost, "/api/v1/admin/loans/"+url.PathEscape(args[0])+"/approval", nil, nil)
			},
		},
		&cobra.Command{
			Use:   "pay <loan-id>",
			Short: "Repay an approved loan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, client, http.MethodPost, "/api/v1/loans/"+url.PathEscape(args[0])+"/payment", nil, nil)
			},
		},
		&cobra.Command{
			Use:   "list <number>",
			Short: "List an account's loans",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, client, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/loans", nil, nil)
			},
		},
	)

	return cmd
}

func statementCmd(client *apiClient) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "statement <number>",
		Short: "Show an account statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if start != "" {
				q.Set("start_date", start)
			}
			if end != "" {
				q.Set("end_date", end)
			}
			return call(cmd, client, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/statement", q, nil)
		},
	}
	cmd.Flags().StringVar(&start, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "to", "", "End date (YYYY-MM-DD)")
	return cmd
}

func balanceCmd(client *apiClient) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "balance <number>",
		Short: "Show the balance at a point in time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if at != "" {
				q.Set("at", at)
			}
			return call(cmd, client, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance/history", q, nil)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "RFC3339 timestamp (defaults to now)")
	return cmd
}

func reconcileCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <number>",
		Short: "Replay an account's log against its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, client, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconciliation", nil, nil)
		},
	}
}

func ledgerCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd, client)
		},
	})

	return cmd
}

func checkConsistency(cmd *cobra.Command, client *apiClient) error {
	body, err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
	out := cmd.OutOrStdout()

	if apiErr, ok := err.(*apiError); ok && apiErr.Status == http.StatusConflict {
		fmt.Fprintln(out, "Consistency check FAILED")
		_ = printJSON(out, body)
		return fmt.Errorf("ledger is inconsistent")
	}
	if err != nil {
		return err
	}

	var result struct {
		Consistent   bool   `json:"consistent"`
		TotalBalance string `json:"total_balance"`
		TotalEntries string `json:"total_entries"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintln(out, "Consistency check PASSED")
	fmt.Fprintf(out, "Total balance: %s\n", result.TotalBalance)
	fmt.Fprintf(out, "Total entries: %s\n", result.TotalEntries)
	return nil
}

func adminCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Institution administration",
	}

	bankruptcyCmd := &cobra.Command{
		Use:       "bankruptcy [on|off]",
		Short:     "Show or set the institution bankruptcy flag",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return call(cmd, client, http.MethodGet, "/api/v1/admin/bankruptcy", nil, nil)
			}

			var bankrupt bool
			switch args[0] {
			case "on":
				bankrupt = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return call(cmd, client, http.MethodPut, "/api/v1/admin/bankruptcy", nil, map[string]bool{"bankrupt": bankrupt})
		},
	}

	cmd.AddCommand(bankruptcyCmd)
	return cmd
}

// printJSON pretty-prints raw JSON to w.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
