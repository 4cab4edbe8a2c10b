// Package main provides a tool to seed the catalog with sample genres and
// books for local development.
//
// Usage:
//
//	STORE_PATH=~/OpenShelf/data/catalog.db go run ./cmd/seed
//	STORE_PATH=~/OpenShelf/data go run ./cmd/seed --driver badger
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/openshelf/openshelf-server/internal/di/providers"
	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/genre"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/store"
	"github.com/openshelf/openshelf-server/internal/store/sqlite"
)

var driver = flag.String("driver", "sqlite", "Storage backend: sqlite or badger")

type seedBook struct {
	title   string
	author  string
	summary string
	genres  []string
}

var seedGenres = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Biography",
	"Poetry",
}

var seedBooks = []seedBook{
	{
		title:   "The Hobbit",
		author:  "J.R.R. Tolkien",
		summary: "A reluctant hobbit joins a company of dwarves to reclaim their mountain home.",
		genres:  []string{"Fantasy"},
	},
	{
		title:   "A Wizard of Earthsea",
		author:  "Ursula K. Le Guin",
		summary: "A young wizard learns that true names carry real power.",
		genres:  []string{"Fantasy"},
	},
	{
		title:   "The Left Hand of Darkness",
		author:  "Ursula K. Le Guin",
		summary: "An envoy navigates politics and ice on a world without fixed gender.",
		genres:  []string{"Science Fiction"},
	},
	{
		title:   "Gaudy Night",
		author:  "Dorothy L. Sayers",
		summary: "Poison-pen letters disturb the peace of an Oxford women's college.",
		genres:  []string{"Mystery"},
	},
	{
		title:   "The Name of the Wind",
		author:  "Patrick Rothfuss",
		summary: "An innkeeper recounts his years at a university of magic.",
		genres:  []string{"Fantasy", "Mystery"},
	},
}

func main() {
	flag.Parse()

	path := os.Getenv("STORE_PATH")
	if path == "" {
		if *driver == "sqlite" {
			path = os.ExpandEnv("$HOME/OpenShelf/data/catalog.db")
		} else {
			path = os.ExpandEnv("$HOME/OpenShelf/data")
		}
	}

	fmt.Printf("Opening %s store at: %s\n", *driver, path)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var (
		db  providers.CatalogStore
		err error
	)
	if *driver == "badger" {
		db, err = store.Open(path, logger)
	} else {
		db, err = sqlite.Open(path, logger)
	}
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Create genres, reusing any that already exist.
	genreIDs := make(map[string]string, len(seedGenres))
	for _, name := range seedGenres {
		name = genre.NormalizeName(name)

		if existing, err := db.GetGenreByName(ctx, name); err == nil {
			fmt.Printf("Genre %q already exists (%s)\n", name, existing.ID)
			genreIDs[name] = existing.ID
			continue
		}

		g := &domain.Genre{
			Record: domain.Record{ID: id.MustGenerate("genre")},
			Name:   name,
		}
		g.InitTimestamps()

		if err := db.CreateGenre(ctx, g); err != nil {
			log.Fatalf("Failed to create genre %q: %v", name, err)
		}
		fmt.Printf("Created genre %q (%s)\n", name, g.ID)
		genreIDs[name] = g.ID
	}

	// Create books and attach their genres.
	for _, sb := range seedBooks {
		b := &domain.Book{
			Record:  domain.Record{ID: id.MustGenerate("book")},
			Title:   sb.title,
			Author:  sb.author,
			Summary: sb.summary,
		}
		b.InitTimestamps()

		if err := db.CreateBook(ctx, b); err != nil {
			log.Fatalf("Failed to create book %q: %v", sb.title, err)
		}

		ids := make([]string, 0, len(sb.genres))
		for _, gname := range sb.genres {
			gid, ok := genreIDs[genre.NormalizeName(gname)]
			if !ok {
				log.Fatalf("Book %q references unknown genre %q", sb.title, gname)
			}
			ids = append(ids, gid)
		}
		if err := db.SetBookGenres(ctx, b.ID, ids); err != nil {
			log.Fatalf("Failed to set genres for %q: %v", sb.title, err)
		}

		fmt.Printf("Created book %q (%s) in %v\n", sb.title, b.ID, sb.genres)
	}

	fmt.Println("\nSeed complete.")
}
