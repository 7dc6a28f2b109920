package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"watch2give/core/abi"
	"watch2give/crypto"
	"watch2give/rpc"
)

const (
	defaultRPCURL    = "http://127.0.0.1:8545"
	rpcURLEnv        = "W2G_RPC_URL"
	rpcTokenEnv      = "W2G_RPC_TOKEN"
	defaultSecretEnv = "W2G_RPC_JWT_SECRET"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	var err error
	switch args[0] {
	case "keygen":
		err = runKeygen(stdout)
	case "account":
		err = runAccount(args[1:], stdout)
	case "token":
		err = runToken(args[1:], stdout)
	case "call":
		err = runCall(args[1:], stdout)
	case "replay":
		err = runReplay(args[1:], stdout)
	case "selector":
		err = runSelector(args[1:], stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: w2gctl <command> [flags]

Commands:
  keygen                                  generate a secp256k1 key and print its account
  account <label|address>                 print the bech32 and hex forms of an account
  token [-issuer I] [-ttl D] <account>    sign a caller token with $W2G_RPC_JWT_SECRET
  call [-rpc URL] <method> [params-json]  invoke a JSON-RPC method on a node
  replay <scenario.yaml>                  run a scripted scenario against an in-memory ledger
  selector [name|0xselector]              describe one message, or list them all`)
}

func runKeygen(stdout io.Writer) error {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "account: %s\nprivate key: %x\n", key.Account(), key.Bytes())
	return nil
}

func runAccount(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("account takes exactly one label or address")
	}
	id := resolveAccount(args[0])
	fmt.Fprintf(stdout, "%s\n%s\n", id.String(), id.Hex())
	return nil
}

func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	issuer := fs.String("issuer", "", "Issuer claim expected by the node")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime (0 for no expiry)")
	secretEnv := fs.String("secret-env", defaultSecretEnv, "Environment variable holding the signing secret")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("token requires an account")
	}
	secret := strings.TrimSpace(os.Getenv(*secretEnv))
	if secret == "" {
		return fmt.Errorf("environment variable %s is not set", *secretEnv)
	}
	token, err := rpc.SignCallerToken([]byte(secret), *issuer, resolveAccount(fs.Arg(0)), *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func runCall(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	endpoint := fs.String("rpc", envOr(rpcURLEnv, defaultRPCURL), "Node JSON-RPC endpoint")
	token := fs.String("token", os.Getenv(rpcTokenEnv), "Bearer token for mutating methods")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("call requires a method and optional params JSON object")
	}
	var params []json.RawMessage
	if fs.NArg() == 2 {
		raw := json.RawMessage(fs.Arg(1))
		if !json.Valid(raw) {
			return fmt.Errorf("params must be valid JSON")
		}
		params = append(params, raw)
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := newClient(*endpoint, *token)
	result, err := client.Call(ctx, fs.Arg(0), params)
	if err != nil {
		return err
	}
	return printJSON(stdout, result)
}

func runSelector(args []string, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("selector takes at most one message name or selector")
	}
	messages := abi.Messages()
	if len(args) == 1 {
		msg, err := abi.Resolve(args[0])
		if err != nil {
			return err
		}
		messages = []abi.Message{msg}
	}
	for _, msg := range messages {
		fmt.Fprintf(stdout, "%s %-22s payable=%t mutates=%t\n", msg.Selector, msg.Name, msg.Payable, msg.Mutates)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// resolveAccount accepts a bech32 or hex account, falling back to the dev
// account derived from the label.
func resolveAccount(value string) crypto.AccountID {
	if id, err := crypto.ParseAccountID(value); err == nil {
		return id
	}
	return crypto.DevAccount(strings.TrimSpace(value))
}
