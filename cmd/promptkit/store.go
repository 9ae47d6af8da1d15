package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptkit/internal/template/loader"
)

func newStoreCmd(a *app) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the SQLite template store",
	}
	cmd.PersistentFlags().StringVar(&db, "db", "", "SQLite template store")

	put := &cobra.Command{
		Use:   "put NAME FILE",
		Short: "Insert or replace the template stored under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			path := db
			if path == "" {
				path = a.cfg.DB
			}
			return a.runStorePut(ctx, cmd, path, args[0], args[1])
		},
	}
	cmd.AddCommand(put)
	return cmd
}

func (a *app) runStorePut(ctx context.Context, cmd *cobra.Command, dbPath, name, file string) error {
	if dbPath == "" {
		return errors.New("--db is required")
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if !utf8.Valid(body) {
		return fmt.Errorf("%s is not valid UTF-8", file)
	}

	db, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := loader.EnsureSchema(ctx, db, ""); err != nil {
		return err
	}
	if err := loader.Put(ctx, db, "", name, string(body)); err != nil {
		return err
	}
	a.logger.Info("stored template", zap.String("name", name), zap.String("db", dbPath), zap.Int("bytes", len(body)))
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", name)
	return nil
}
