package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"tobewise-cli/internal/compat"
	"tobewise-cli/internal/config"
	"tobewise-cli/internal/db"
	"tobewise-cli/internal/export"
	"tobewise-cli/internal/mcp"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/notify"
	"tobewise-cli/internal/query"
	"tobewise-cli/internal/remote"
	"tobewise-cli/internal/scheduler"
	"tobewise-cli/internal/settings"
	"tobewise-cli/internal/syncer"
	"tobewise-cli/internal/version"

	"github.com/MatusOllah/slogcolor"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg      config.Config
	database *db.DB
	store    settings.Store
	engine   *query.Engine
)

func init() {
	cobra.OnInitialize(initApp)
}

func initApp() {
	opts := slogcolor.DefaultOptions
	if verbose {
		opts.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, opts)))

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	database, err = db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.Init(); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	store = settings.NewSQLiteStore(database)
	engine = query.New(database, store)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tobewise-cli",
		Short: "A CLI tool for managing a local quotation catalog",
		Long:  "Browse, edit, sync, schedule, and export quotations from a local SQLite catalog",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tobewise.yaml", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	var addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a quotation",
		RunE:  runAdd,
	}

	var (
		addText          string
		addAuthor        string
		addSubjects      string
		addContributedBy string
		addAuthorLink    string
		addVideoLink     string
	)

	addCmd.Flags().StringVar(&addText, "text", "", "Quotation text (required)")
	addCmd.Flags().StringVar(&addAuthor, "author", "", "Author name (required)")
	addCmd.Flags().StringVar(&addSubjects, "subjects", "", "Comma-separated subject tags")
	addCmd.Flags().StringVar(&addContributedBy, "contributed-by", model.DefaultUsername, "Contributor name")
	addCmd.Flags().StringVar(&addAuthorLink, "author-link", "", "URL with more about the author")
	addCmd.Flags().StringVar(&addVideoLink, "video-link", "", "URL of a related video")
	addCmd.MarkFlagRequired("text")
	addCmd.MarkFlagRequired("author")

	var editCmd = &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a quotation",
		Args:  cobra.ExactArgs(1),
		RunE:  runEdit,
	}

	editCmd.Flags().String("text", "", "New quotation text")
	editCmd.Flags().String("author", "", "New author name")
	editCmd.Flags().String("subjects", "", "New comma-separated subject tags")
	editCmd.Flags().String("author-link", "", "New author URL")
	editCmd.Flags().String("video-link", "", "New video URL")

	var getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Show a single quotation",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}

	var searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Search quotations",
		Long:  "Search by author or subject, or pass a reserved collection token such as 'Show All', 'Favorite Quotations', 'Top 100', 'Recently Added', 'Contributed By Me' or 'Deleted'. Results are shuffled except 'Recently Added'.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	var (
		searchFilter string
		searchJSON   bool
	)

	searchCmd.Flags().StringVar(&searchFilter, "filter", string(model.FilterSubject), "Match against 'Author' or 'Subject'")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output results as JSON")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List every live quotation in random order",
		RunE:  runList,
	}

	var listJSON bool
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output results as JSON")

	var countCmd = &cobra.Command{
		Use:   "count [query]",
		Short: "Count quotations matching a query",
		Args:  cobra.ExactArgs(1),
		RunE:  runCount,
	}

	countCmd.Flags().String("filter", string(model.FilterSubject), "Match against 'Author' or 'Subject'")

	var browseCmd = &cobra.Command{
		Use:   "browse",
		Short: "Show the shuffled quotation list for the stored selection",
		RunE:  runBrowse,
	}

	var browseJSON bool
	browseCmd.Flags().BoolVar(&browseJSON, "json", false, "Output results as JSON")

	var authorsCmd = &cobra.Command{
		Use:   "authors",
		Short: "List distinct authors",
		RunE:  runAuthors,
	}

	var subjectsCmd = &cobra.Command{
		Use:   "subjects",
		Short: "List distinct subject tags",
		RunE:  runSubjects,
	}

	var favoriteCmd = &cobra.Command{
		Use:   "favorite [id]",
		Short: "Mark a quotation as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE:  runFavorite,
	}

	favoriteCmd.Flags().Bool("remove", false, "Remove the favorite mark instead")

	var deleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Soft-delete a quotation",
		Long:  "Mark a quotation as deleted. Deleted quotations disappear from every collection except 'Deleted' and can be restored.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	var restoreCmd = &cobra.Command{
		Use:   "restore [id]",
		Short: "Restore a soft-deleted quotation",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}

	var seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog from a bundled JSON file",
		Long:  "Load the initial quotation set from a JSON file. Does nothing if the catalog already has rows.",
		RunE:  runSeed,
	}

	seedCmd.Flags().String("file", "", "Path to JSON seed file (defaults to the configured seed_path)")

	var syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Import new and changed quotations from the remote catalog",
		RunE:  runSync,
	}

	var syncURL string
	syncCmd.Flags().StringVar(&syncURL, "url", "", "Remote catalog base URL (overrides config)")

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade legacy stored settings and clean stored subjects",
		RunE:  runMigrate,
	}

	var notifyCmd = &cobra.Command{
		Use:   "notify",
		Short: "Schedule the pending notification batch",
		Long:  "Replace the pending notification schedule with a fresh batch drawn from the stored notification selection, fitted to the configured daily window.",
		RunE:  runNotify,
	}

	notifyCmd.Flags().String("query", "", "Query override for this batch")
	notifyCmd.Flags().String("filter", "", "Filter override for this batch: 'Author' or 'Subject'")

	var exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export quotations as Markdown files",
		RunE:  runExport,
	}

	var (
		exportDir    string
		exportToken  string
		exportFilter string
	)

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (defaults to the configured export_dir)")
	exportCmd.Flags().StringVar(&exportToken, "query", model.TokenShowAll, "Query token selecting what to export")
	exportCmd.Flags().StringVar(&exportFilter, "filter", string(model.FilterSubject), "Match against 'Author' or 'Subject'")

	var mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP (Model Context Protocol) server",
		Long:  "Start an MCP server that exposes quotation search for AI models and other MCP clients",
		RunE:  runMCP,
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.GetFullVersion())
		},
	}

	rootCmd.AddCommand(addCmd, editCmd, getCmd, searchCmd, listCmd, countCmd, browseCmd, authorsCmd, subjectsCmd, favoriteCmd, deleteCmd, restoreCmd, seedCmd, syncCmd, migrateCmd, notifyCmd, exportCmd, mcpCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}

	if database != nil {
		database.Close()
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	author, _ := cmd.Flags().GetString("author")
	subjects, _ := cmd.Flags().GetString("subjects")
	contributedBy, _ := cmd.Flags().GetString("contributed-by")
	authorLink, _ := cmd.Flags().GetString("author-link")
	videoLink, _ := cmd.Flags().GetString("video-link")

	id, err := database.SaveQuote(model.Quotation{
		QuoteText:     text,
		Author:        author,
		Subjects:      subjects,
		ContributedBy: contributedBy,
		AuthorLink:    authorLink,
		VideoLink:     videoLink,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added quotation %d\n", id)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	quote, err := database.GetQuoteByID(id)
	if err != nil {
		return err
	}
	if quote == nil {
		return fmt.Errorf("no quotation with ID %d", id)
	}

	if cmd.Flags().Changed("text") {
		quote.QuoteText, _ = cmd.Flags().GetString("text")
	}
	if cmd.Flags().Changed("author") {
		quote.Author, _ = cmd.Flags().GetString("author")
	}
	if cmd.Flags().Changed("subjects") {
		quote.Subjects, _ = cmd.Flags().GetString("subjects")
	}
	if cmd.Flags().Changed("author-link") {
		quote.AuthorLink, _ = cmd.Flags().GetString("author-link")
	}
	if cmd.Flags().Changed("video-link") {
		quote.VideoLink, _ = cmd.Flags().GetString("video-link")
	}

	if err := database.EditQuote(id, *quote); err != nil {
		return err
	}

	fmt.Printf("Updated quotation %d\n", id)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	quote, err := engine.GetByID(id)
	if err != nil {
		return err
	}
	if quote == nil {
		return fmt.Errorf("no quotation with ID %d", id)
	}

	printQuote(*quote)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	filterStr, _ := cmd.Flags().GetString("filter")
	asJSON, _ := cmd.Flags().GetBool("json")

	quotes, err := engine.Shuffled(args[0], model.FilterKind(filterStr))
	if err != nil {
		return err
	}

	return printQuotes(quotes, asJSON)
}

func runList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	quotes, err := engine.ListAll(model.FilterSubject)
	if err != nil {
		return err
	}
	return printQuotes(quotes, asJSON)
}

func runCount(cmd *cobra.Command, args []string) error {
	filterStr, _ := cmd.Flags().GetString("filter")

	count, err := engine.Count(args[0], model.FilterKind(filterStr))
	if err != nil {
		return err
	}

	fmt.Println(count)
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return printQuotes(engine.BrowseQuotes(), asJSON)
}

func runAuthors(cmd *cobra.Command, args []string) error {
	authors, err := engine.Distinct(model.FilterAuthor)
	if err != nil {
		return err
	}
	for _, a := range authors {
		fmt.Println(a)
	}
	return nil
}

func runSubjects(cmd *cobra.Command, args []string) error {
	subjects, err := engine.Distinct(model.FilterSubject)
	if err != nil {
		return err
	}
	for _, s := range subjects {
		fmt.Println(s)
	}
	return nil
}

func runFavorite(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	remove, _ := cmd.Flags().GetBool("remove")

	changed, err := database.SetFavorite(id, !remove)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Printf("No quotation with ID %d\n", id)
		return nil
	}

	if remove {
		fmt.Printf("Removed favorite mark from quotation %d\n", id)
	} else {
		fmt.Printf("Marked quotation %d as favorite\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := database.SetDeleted(id, true); err != nil {
		return err
	}

	fmt.Printf("Deleted quotation %d\n", id)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := database.SetDeleted(id, false); err != nil {
		return err
	}

	fmt.Printf("Restored quotation %d\n", id)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.SeedPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("seed file does not exist: %s", path)
	}

	inserted, err := database.SeedFromJSON(path)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d quotations\n", inserted)
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = cfg.RemoteURL
	}
	if url == "" {
		return fmt.Errorf("no remote URL configured; set remote_url or pass --url")
	}

	source := remote.NewHTTPSource(url)
	s := syncer.New(database, store, source, cfg.Collection)
	return s.Run(context.Background())
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return compat.Run(store, database)
}

func runNotify(cmd *cobra.Command, args []string) error {
	queryOverride, _ := cmd.Flags().GetString("query")
	filterStr, _ := cmd.Flags().GetString("filter")

	sched := scheduler.New(store, engine, notify.LogNotifier{})
	return sched.Schedule(context.Background(), queryOverride, model.FilterKind(filterStr))
}

func runExport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.ExportDir
	}
	token, _ := cmd.Flags().GetString("query")
	filterStr, _ := cmd.Flags().GetString("filter")

	exp := export.New(engine)
	return exp.ExportAll(export.Options{
		Directory: dir,
		Token:     token,
		Filter:    model.FilterKind(filterStr),
	})
}

func runMCP(cmd *cobra.Command, args []string) error {
	server := mcp.NewServer(engine)
	return server.Start()
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid quotation ID: %s", arg)
	}
	return id, nil
}

func printQuote(q model.Quotation) {
	fmt.Printf("> %s\n\n-- %s", q.QuoteText, q.Author)
	if q.Subjects != "" {
		fmt.Printf(" (%s)", q.Subjects)
	}
	fmt.Printf("  [#%d]\n", q.ID)
}

func printQuotes(quotes []model.Quotation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quotes)
	}

	for i, q := range quotes {
		if i > 0 {
			fmt.Println()
		}
		printQuote(q)
	}
	fmt.Printf("\n%d quotations\n", len(quotes))
	return nil
}
