package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/db"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert roster rows that are not already present",
		Long: `seed loads people into the configured SQL database.  Without --file the
built-in dev roster is used.  The file format matches the registry feed:
uid,firstName,lastName with an optional header.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if cfg.DBDriver == "memory" {
				return errors.New("seed needs a sqlite or mysql driver; the memory store seeds itself in dev")
			}

			people := db.DefaultDevRoster
			if file != "" {
				if people, err = readSeedFile(file); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			conn, err := db.Open(ctx, db.Config{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DBDSN})
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer conn.Close()

			added, err := db.SeedDev(ctx, conn, cfg.DBDriver, people)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d people\n", added, len(people))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV roster file (uid,firstName,lastName)")
	return cmd
}

func readSeedFile(path string) ([]db.DevPerson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []db.DevPerson
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) < 2 || strings.EqualFold(strings.TrimSpace(rec[0]), "uid") {
			continue
		}
		p := db.DevPerson{
			UID:       strings.ToUpper(strings.TrimSpace(rec[0])),
			FirstName: strings.TrimSpace(rec[1]),
		}
		if len(rec) > 2 {
			p.LastName = strings.TrimSpace(rec[2])
		}
		if p.UID == "" || p.FirstName == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
