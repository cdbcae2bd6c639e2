package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// Config is the persisted CLI state.
type Config struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".postbase")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cli_config.json"), nil
}

func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{BaseURL: "http://localhost:3001/api"}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3001/api"
	}
	return &cfg, nil
}

func saveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func request(cfg *Config, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := strings.TrimRight(cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func printJSON(data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(buf.String())
}

var rootCmd = &cobra.Command{
	Use:   "postbase",
	Short: "Postbase CLI",
}

func newLoginCmd() *cobra.Command {
	var email, password, baseURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			body, err := json.Marshal(map[string]string{"email": email, "password": password})
			if err != nil {
				return err
			}
			data, err := request(cfg, http.MethodPost, "/auth/login", nil, bytes.NewReader(body), "application/json")
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			var out struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(data, &out); err != nil {
				return err
			}
			cfg.Token = out.Token
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Println("logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	return cmd
}

func newPostsListCmd() *cobra.Command {
	var sortBy, sortDir, q, searchColumns, mode, cursor, cursorField, direction string
	var page, pageSize int
	var filters []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts with filters, sorting and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			query := url.Values{}
			setIf := func(key, val string) {
				if val != "" {
					query.Set(key, val)
				}
			}
			setIf("sortBy", sortBy)
			setIf("sortDir", sortDir)
			setIf("q", q)
			setIf("searchColumns", searchColumns)
			setIf("mode", mode)
			setIf("cursor", cursor)
			setIf("cursorField", cursorField)
			setIf("direction", direction)
			if page > 0 {
				query.Set("page", fmt.Sprint(page))
			}
			if pageSize > 0 {
				query.Set("pageSize", fmt.Sprint(pageSize))
			}
			// Filters are passed through verbatim, e.g. status=published or
			// created_at[gte]=2024-01-01.
			for _, f := range filters {
				key, val, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("invalid filter %q, expected key=value", f)
				}
				query.Add(key, val)
			}
			data, err := request(cfg, http.MethodGet, "/posts", query, nil, "")
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort column")
	cmd.Flags().StringVar(&sortDir, "sort-dir", "", "Sort direction (asc|desc)")
	cmd.Flags().StringVar(&q, "q", "", "Free-text search term")
	cmd.Flags().StringVar(&searchColumns, "search-columns", "", "Comma-separated columns to search")
	cmd.Flags().StringVar(&mode, "mode", "", "Pagination mode (offset|cursor)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor value for cursor mode")
	cmd.Flags().StringVar(&cursorField, "cursor-field", "", "Column the cursor compares against")
	cmd.Flags().StringVar(&direction, "direction", "", "Cursor direction (next|prev)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (offset mode)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter expression, e.g. status=published or created_at[gte]=2024-01-01")
	return cmd
}

func newPostsCreateCmd() *cobra.Command {
	var title, body, status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("title is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			payload, err := json.Marshal(map[string]string{"title": title, "body": body, "status": status})
			if err != nil {
				return err
			}
			data, err := request(cfg, http.MethodPost, "/posts", nil, bytes.NewReader(payload), "application/json")
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&body, "body", "", "Post body")
	cmd.Flags().StringVar(&status, "status", "", "Post status (draft|published|archived)")
	return cmd
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <post-id> <file>",
		Short: "Upload a file as a post attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			path := fmt.Sprintf("/posts/%s/attachments/%s", args[0], filepath.Base(args[1]))
			data, err := request(cfg, http.MethodPut, path, nil, f, "application/octet-stream")
			if err != nil {
				return err
			}
			printJSON(data)
			return nil
		},
	}
	return cmd
}

func main() {
	postsCmd := &cobra.Command{Use: "posts", Short: "Manage posts"}
	postsCmd.AddCommand(newPostsListCmd(), newPostsCreateCmd())

	rootCmd.AddCommand(newLoginCmd(), postsCmd, newUploadCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
