// ABOUTME: HTTP client subcommands for talking to a running gateway
// ABOUTME: Loads the gateway base URL from a TOML client config with env expansion

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
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"

	"github.com/fabworks/paramspec-gateway/internal/config"
	"github.com/fabworks/paramspec-gateway/internal/store"
)

// ClientConfig points CLI subcommands at a running gateway.
type ClientConfig struct {
	Gateway ClientGatewayConfig `toml:"gateway"`
}

type ClientGatewayConfig struct {
	URL string `toml:"url"`
}

// getClientConfigPath returns the path to the client config file.
// Priority: PARAMSPEC_CLIENT_CONFIG env var > XDG_CONFIG_HOME/paramspec/client.toml > ~/.config/paramspec/client.toml
func getClientConfigPath() string {
	if envPath := os.Getenv("PARAMSPEC_CLIENT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "client.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "paramspec", "client.toml")
}

// loadClientConfig reads the TOML client config, expanding ${VAR} references.
func loadClientConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg ClientConfig
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}

	if cfg.Gateway.URL == "" {
		return nil, fmt.Errorf("gateway.url is required in %s", path)
	}
	u, err := url.Parse(cfg.Gateway.URL)
	if err != nil {
		return nil, fmt.Errorf("gateway.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway.url must use http or https scheme")
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// gatewayBaseURL resolves the gateway address for client subcommands.
// Prefers the client config; falls back to the server config's http_addr so
// the CLI works out of the box on the host running the gateway.
func gatewayBaseURL() (string, error) {
	clientPath := getClientConfigPath()
	if _, err := os.Stat(clientPath); err == nil {
		cfg, err := loadClientConfig(clientPath)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(cfg.Gateway.URL, "/"), nil
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return "", fmt.Errorf("no client config at %s and no gateway config: %w", clientPath, err)
	}
	return "http://" + cfg.Server.HTTPAddr, nil
}

func runHealth(ctx context.Context) error {
	baseURL, err := gatewayBaseURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runSpecs(ctx context.Context) error {
	sub := "list"
	if len(os.Args) > 2 {
		sub = os.Args[2]
	}

	switch sub {
	case "list":
		return runSpecsList(ctx)
	case "add":
		return runSpecsAdd(ctx)
	default:
		return fmt.Errorf("unknown specs subcommand: %s (want list or add)", sub)
	}
}

func runSpecsList(ctx context.Context) error {
	baseURL, err := gatewayBaseURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/parameter-specs", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("listing specs failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing specs: status %d", resp.StatusCode)
	}

	var allSpecs []store.ParameterSpec
	if err := json.NewDecoder(resp.Body).Decode(&allSpecs); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(allSpecs) == 0 {
		fmt.Println("no parameter specs stored")
		return nil
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("%-20s %-20s %10s %10s %10s %10s %10s\n",
		"TOOL", "PARAMETER", "USL", "LSL", "UCL", "LCL", "CL")
	for _, ps := range allSpecs {
		fmt.Printf("%-20s %-20s %10s %10s %10s %10s %10s\n",
			ps.ToolName, ps.ParameterName,
			ps.USL.String(), ps.LSL.String(), ps.UCL.String(), ps.LCL.String(), ps.CL.String())
	}
	return nil
}

func runSpecsAdd(ctx context.Context) error {
	fields, err := parseAddFlags(os.Args[3:])
	if err != nil {
		return err
	}

	baseURL, err := gatewayBaseURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+"/api/parameter-specs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("adding spec failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("gateway rejected spec: %s", errResp.Error)
		}
		return fmt.Errorf("adding spec: status %d", resp.StatusCode)
	}

	green := color.New(color.FgGreen)
	green.Print("  ✓ ")
	fmt.Printf("Created: %s\n", string(respBody))
	return nil
}

// parseAddFlags parses "--field value" and "--field=value" pairs for specs add.
func parseAddFlags(args []string) (map[string]json.RawMessage, error) {
	known := map[string]bool{
		"tool_name": true, "parameter_name": true,
		"usl": true, "lsl": true, "ucl": true, "lcl": true, "cl": true,
	}

	fields := make(map[string]json.RawMessage)
	setField := func(name, value string) error {
		if !known[name] {
			return fmt.Errorf("unknown flag: --%s", name)
		}
		if name == "tool_name" || name == "parameter_name" {
			quoted, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", name, err)
			}
			fields[name] = quoted
			return nil
		}
		// Numeric limits pass through as raw JSON numbers so the server sees
		// the exact decimal literal the user typed
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("--%s must be a number, got %q", name, value)
		}
		fields[name] = json.RawMessage(value)
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "--") && strings.Contains(arg, "="):
			name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
			if err := setField(name, value); err != nil {
				return nil, err
			}
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--%s requires a value", name)
			}
			if err := setField(name, args[i+1]); err != nil {
				return nil, err
			}
			i++
		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	for _, name := range store.Columns {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("--%s is required", name)
		}
	}
	return fields, nil
}
