package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/discshelf/internal/catalog"
	"github.com/vmunix/discshelf/internal/collection"
)

// movieOutput is the --json shape of a catalog entry.
type movieOutput struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Format     string   `json:"format"`
	Year       *int     `json:"year"`
	TMDBID     *int64   `json:"tmdb_id"`
	PosterFile *string  `json:"poster_file"`
	Vote       *float64 `json:"vote"`
	Watched    bool     `json:"watched"`
	AddedAt    string   `json:"added_at"`
}

func toMovieOutput(m *catalog.Movie) movieOutput {
	return movieOutput{
		ID:         m.ID,
		Title:      m.Title,
		Format:     m.Format,
		Year:       m.Year,
		TMDBID:     m.TMDBID,
		PosterFile: m.PosterFile,
		Vote:       m.Vote,
		Watched:    m.Watched,
		AddedAt:    m.AddedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie to the catalog",
		Long:  "Adds a copy typed in by hand, or looks it up on TMDB when --tmdb-id is given.",
		Args:  cobra.NoArgs,
		RunE:  runAdd,
	}
	addCmd.Flags().String("title", "", "Title (required without --tmdb-id)")
	addCmd.Flags().Int("year", 0, "Release year")
	addCmd.Flags().StringSliceP("format", "f", nil, "Format, repeatable (e.g. DVD, Blu-ray)")
	addCmd.Flags().Int64("tmdb-id", 0, "The Movie Database ID")
	_ = addCmd.MarkFlagRequired("format")
	addCmd.MarkFlagsMutuallyExclusive("title", "tmdb-id")
	addCmd.MarkFlagsOneRequired("title", "tmdb-id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().Bool("watched", false, "Only watched movies")
	listCmd.Flags().Bool("unwatched", false, "Only unwatched movies")
	listCmd.Flags().String("sort", "", "Sort by title, year, added, vote or watched")
	listCmd.Flags().Bool("desc", false, "Reverse the sort order")
	listCmd.Flags().StringP("query", "q", "", "Fuzzy title search")
	listCmd.Flags().String("format", "", "Only copies in this format")
	listCmd.MarkFlagsMutuallyExclusive("watched", "unwatched")

	watchedCmd := &cobra.Command{
		Use:   "watched <id>",
		Short: "Toggle the watched flag",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatched,
	}

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a movie and its poster",
		Args:    cobra.ExactArgs(1),
		RunE:    runRemove,
	}

	rootCmd.AddCommand(addCmd, listCmd, watchedCmd, rmCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	year, _ := cmd.Flags().GetInt("year")
	formats, _ := cmd.Flags().GetStringSlice("format")
	tmdbID, _ := cmd.Flags().GetInt64("tmdb-id")

	a, err := newApp(cmd.Context(), quietLogger(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var m *catalog.Movie
	if tmdbID > 0 {
		m, err = a.movies.AddFromTMDB(cmd.Context(), tmdbID, formats)
	} else {
		entry := collection.ManualEntry{Title: title, Formats: formats}
		if year > 0 {
			entry.Year = &year
		}
		m, err = a.movies.AddManual(cmd.Context(), entry)
	}
	if err != nil {
		var dup *collection.DuplicateError
		if errors.As(err, &dup) && dup.Existing != nil {
			return fmt.Errorf("already in the catalog as #%d %s (%s)", dup.Existing.ID, dup.Existing.Title, dup.Existing.Format)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, toMovieOutput(m))
	}
	fmt.Fprintf(out, "Added #%d %s", m.ID, m.Title)
	if m.Year != nil {
		fmt.Fprintf(out, " (%d)", *m.Year)
	}
	fmt.Fprintf(out, " [%s]\n", m.Format)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	watched, _ := cmd.Flags().GetBool("watched")
	unwatched, _ := cmd.Flags().GetBool("unwatched")
	sortKey, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	query, _ := cmd.Flags().GetString("query")
	format, _ := cmd.Flags().GetString("format")

	opts := collection.ListOptions{Query: query, Desc: desc}
	if sortKey != "" {
		if !catalog.ValidSortKey(catalog.SortKey(sortKey)) {
			return fmt.Errorf("invalid --sort %q: use title, year, added, vote or watched", sortKey)
		}
		opts.Sort = catalog.SortKey(sortKey)
	}
	switch {
	case watched:
		opts.Watched = &watched
	case unwatched:
		no := false
		opts.Watched = &no
	}
	if format != "" {
		opts.Format = &format
	}

	a, err := newApp(cmd.Context(), quietLogger(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	movies, err := a.movies.List(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		items := make([]movieOutput, 0, len(movies))
		for _, m := range movies {
			items = append(items, toMovieOutput(m))
		}
		return printJSON(out, map[string]any{"movies": items, "total": len(items)})
	}
	printMovieList(out, movies)
	return nil
}

func printMovieList(w io.Writer, movies []*catalog.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(w, "No movies in the catalog.")
		return
	}

	fmt.Fprintf(w, "Movies (%d):\n\n", len(movies))
	fmt.Fprintf(w, "  %-5s %-40s %-6s %-20s %-5s %s\n", "ID", "TITLE", "YEAR", "FORMAT", "VOTE", "WATCHED")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 88))
	for _, m := range movies {
		title := truncate(m.Title, 40)
		year := ""
		if m.Year != nil {
			year = strconv.Itoa(*m.Year)
		}
		vote := ""
		if m.Vote != nil {
			vote = strconv.FormatFloat(*m.Vote, 'f', 1, 64)
		}
		seen := ""
		if m.Watched {
			seen = "yes"
		}
		fmt.Fprintf(w, "  %-5d %-40s %-6s %-20s %-5s %s\n", m.ID, title, year, m.Format, vote, seen)
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func runWatched(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), quietLogger(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	watched, err := a.movies.ToggleWatched(id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"id": id, "watched": watched})
	}
	if watched {
		fmt.Fprintf(out, "#%d marked as watched\n", id)
	} else {
		fmt.Fprintf(out, "#%d marked as not watched\n", id)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), quietLogger(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.movies.Delete(cmd.Context(), id); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"id": id, "deleted": true})
	}
	fmt.Fprintf(out, "Deleted #%d\n", id)
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
