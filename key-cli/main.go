package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kdex-tech/kdex-splitscreen/internal/config"
	pkgauth "github.com/kdex-tech/kdex-splitscreen/pkg/auth"
)

const minSecretBytes = 16

func main() {
	app := &cli.Command{
		Name:  "key-cli",
		Usage: "editor credentials for the splitscreen host",
		Commands: []*cli.Command{
			{
				Name:   "secret",
				Usage:  "Prints a random value for editor.secret",
				Action: secret,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "bytes", Value: 32, Usage: "number of random `BYTES` in the secret"},
				},
			},
			{
				Name:   "token",
				Usage:  "Signs an editor token with the configured secret and issuer",
				Action: token,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
					&cli.StringFlag{Name: "uid", Required: true, Usage: "token subject"},
					&cli.StringFlag{Name: "email", Usage: "email claim"},
					&cli.StringFlag{Name: "roles", Value: pkgauth.EditorRole, Usage: "comma separated `ROLES`"},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, editor.token_ttl when unset"},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func secret(_ context.Context, cmd *cli.Command) error {
	size := int(cmd.Int("bytes"))
	if size < minSecretBytes {
		return fmt.Errorf("a secret needs at least %d bytes", minSecretBytes)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("unable to read random bytes: %w", err)
	}

	fmt.Println(base64.RawURLEncoding.EncodeToString(buf))
	return nil
}

func token(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cfg.Editor.Secret.Value() == "" {
		return errors.New("editor.secret is not configured")
	}

	ttl := cmd.Duration("ttl")
	if ttl == 0 {
		ttl = cfg.Editor.TokenTTL
	}

	signed, err := pkgauth.SignToken(
		cmd.String("uid"),
		cmd.String("email"),
		strings.Split(cmd.String("roles"), ","),
		cfg.Editor.Issuer,
		[]byte(cfg.Editor.Secret.Value()),
		ttl,
	)
	if err != nil {
		return fmt.Errorf("unable to sign token: %w", err)
	}

	fmt.Println(signed)
	return nil
}
