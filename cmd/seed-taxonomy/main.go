// seed-taxonomy creates parent category / category / subcategory / type
// chains on the backend. Existing records are reused by name.
//
// Usage:
//   ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-taxonomy -file taxonomy.txt
//   go run ./cmd/seed-taxonomy "Wedding/Hindu/Haldi/Floral" "Festive/Diwali"
//
// Each line (or argument) is a slash-separated path of one to four names.
// Blank lines and lines starting with # are skipped.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/taxonomy"
)

func main() {
	file := flag.String("file", "", "Optional: file with one taxonomy path per line")
	dryRun := flag.Bool("dry-run", false, "Only print what would be created")
	flag.Parse()

	paths := flag.Args()
	if *file != "" {
		lines, err := readLines(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		paths = append(paths, lines...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no taxonomy paths given (use -file or pass them as arguments)")
		os.Exit(2)
	}

	ctx := context.Background()
	client, err := signIn(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	svc := taxonomy.NewService(client)

	created := 0
	for _, raw := range paths {
		names := splitPath(raw)
		if len(names) == 0 {
			continue
		}
		n, err := seedPath(ctx, svc, names, *dryRun)
		created += n
		if err != nil {
			config.LogError(config.GetLogger(), "SeedTaxonomy", "seedPath", raw, names, err)
			fmt.Fprintf(os.Stderr, "failed at %q: %v\n", raw, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Done: %d record(s) created for %d path(s)\n", created, len(paths))
}

func signIn(ctx context.Context) (*backend.Client, error) {
	input := models.LoginInput{
		Email:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	client := backend.NewClient(config.BackendBaseURL(), config.BackendTimeout())
	info, err := client.Login(ctx, input)
	if err != nil {
		return nil, err
	}
	if !info.User.IsAdmin() {
		return nil, fmt.Errorf("%s is not an admin", input.Email)
	}
	return client.WithToken(info.Token), nil
}

// seedPath walks names level by level, creating whatever is missing. The
// store is reloaded before each level so every create resolves against the
// backend's current state.
func seedPath(ctx context.Context, svc *taxonomy.Service, names []string, dryRun bool) (int, error) {
	levels := []taxonomy.Level{taxonomy.LevelParentCategory, taxonomy.LevelCategory, taxonomy.LevelSubcategory, taxonomy.LevelType}
	created := 0
	parentID := ""
	for i, name := range names {
		level := levels[i]
		store, err := svc.Store(ctx)
		if err != nil {
			return created, err
		}
		if id, ok := store.FindChild(level, parentID, name); ok {
			parentID = id
			continue
		}
		if dryRun {
			fmt.Printf("would create %s %q\n", level, name)
			return created, nil
		}

		var id string
		switch level {
		case taxonomy.LevelParentCategory:
			p, err := svc.CreateParentCategory(ctx, name)
			if err != nil {
				return created, err
			}
			id = p.ID
		case taxonomy.LevelCategory:
			c, err := svc.CreateCategory(ctx, parentID, name)
			if err != nil {
				return created, err
			}
			id = c.ID
		case taxonomy.LevelSubcategory:
			sub, err := svc.CreateSubcategory(ctx, parentID, name)
			if err != nil {
				return created, err
			}
			id = sub.ID
		case taxonomy.LevelType:
			t, err := svc.CreateType(ctx, parentID, name)
			if err != nil {
				return created, err
			}
			id = t.ID
		}
		fmt.Printf("created %s %q (%s)\n", level, name, id)
		created++
		parentID = id
	}
	return created, nil
}

func splitPath(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, "/") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) > 4 {
		names = names[:4]
	}
	return names
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
