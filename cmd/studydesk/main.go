package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"studydesk/internal/config"
	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
	domainllm "studydesk/internal/domain/services/llm"
	"studydesk/internal/repository/sqlite"
	"studydesk/internal/service/chat"
	"studydesk/internal/service/display"
	"studydesk/internal/service/documents"
	"studydesk/internal/service/extract"
	"studydesk/internal/service/library"
	"studydesk/internal/service/llm"
	"studydesk/internal/service/llm/providers/anthropic"
	"studydesk/internal/service/llm/providers/simulated"
	"studydesk/internal/service/uploads"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx       context.Context
	cfg       *config.Config
	store     repositories.Store
	registry  *documents.Registry
	directory *chat.Directory
	uploads   *uploads.Service
	projector *library.Projector
	responder *llm.Responder
	signal    *display.Signal
	scanner   *bufio.Scanner
	logger    *slog.Logger

	project      string
	currentDoc   *models.Document
	lastExercise *models.Document
}

// setupLogger creates a logger that writes to both console and file.
func setupLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	logFile, err := config.SetupLogFile(cfg.LogDir, 10)
	if err != nil {
		return nil, nil, err
	}

	consoleLevel := slog.LevelWarn
	if cfg.Debug {
		consoleLevel = slog.LevelInfo
	}
	consoleHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: consoleLevel,
	})
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	logger := slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
	slog.SetDefault(logger)
	return logger, logFile, nil
}

// multiHandler writes to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logFile, err := setupLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger.Info("studydesk starting",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"provider", cfg.DefaultProvider,
	)

	// The one AI error that blocks instead of degrading: the user asked for
	// the real provider but no key is configured, and no fallback can fix
	// that apart from switching to simulated mode.
	if cfg.DefaultProvider == "anthropic" && cfg.AnthropicAPIKey == "" {
		fmt.Printf("%s❌ ANTHROPIC_API_KEY is required for provider 'anthropic'. Set it, or run with DEFAULT_PROVIDER=simulated.%s\n", colorRed, colorReset)
		os.Exit(1)
	}

	// Open and seed the store before anything else reads it
	store, err := sqlite.Open(cfg.DatabasePath(), logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to open store: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Seed(); err != nil {
		fmt.Printf("%s❌ Failed to seed store: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	logger.Info("store ready", "path", store.Path())

	// Services, wired explicitly
	projector := library.NewProjector(store, logger)
	registry := documents.NewRegistry(store, projector, logger)
	signal := display.NewSignal()
	directory := chat.NewDirectory(store, projector, signal, logger)
	extractor := extract.NewRegistry(logger)
	uploadSvc := uploads.NewService(store, projector, extractor, logger)

	var primary domainllm.Provider
	if cfg.AnthropicAPIKey != "" {
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			fmt.Printf("%s❌ Failed to setup Anthropic provider: %v%s\n", colorRed, err, colorReset)
			os.Exit(1)
		}
		primary = provider
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - running with simulated responses only")
	}
	responder := llm.NewResponder(primary, simulated.NewProvider(), cfg.DefaultModel, cfg.SimulatedModel, logger)

	directory.Bootstrap()

	cli := &CLI{
		ctx:       context.Background(),
		cfg:       cfg,
		store:     store,
		registry:  registry,
		directory: directory,
		uploads:   uploadSvc,
		projector: projector,
		responder: responder,
		signal:    signal,
		scanner:   bufio.NewScanner(os.Stdin),
		logger:    logger,
		project:   "default",
	}
	cli.run()
}

func (cli *CLI) run() {
	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	fmt.Printf("%s║           studydesk v1.0             ║%s\n", colorCyan, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	fmt.Printf("%sProject: %s%s - type 'help' for commands\n", colorBlue, cli.project, colorReset)

	for {
		fmt.Printf("\n%s>%s ", colorGreen, colorReset)
		line := cli.readLine()
		if line == "" {
			continue
		}
		cmd, arg := splitCommand(line)
		cli.logger.Debug("command", "cmd", cmd, "arg", arg)

		switch cmd {
		case "help":
			cli.printHelp()
		case "project":
			cli.setProject(arg)
		case "upload":
			cli.uploadFlow(arg)
		case "files":
			cli.listFiles()
		case "generate":
			cli.generateFlow(arg)
		case "docs":
			cli.listDocs()
		case "open":
			cli.openDoc(arg)
		case "delete":
			cli.deleteDoc(arg)
		case "search":
			cli.searchDocs(arg)
		case "ask":
			cli.askFlow(arg)
		case "sessions":
			cli.listSessions()
		case "switch":
			cli.directory.SwitchSession(arg)
		case "newchat":
			cli.directory.CreateNewSession(true)
			fmt.Printf("%s✓ new chat started%s\n", colorGreen, colorReset)
		case "delchat":
			cli.directory.Delete(arg)
			fmt.Printf("%s✓ chat deleted%s\n", colorGreen, colorReset)
		case "export":
			cli.exportFlow(arg)
		case "cleanup":
			removed := cli.projector.CleanupEmptyProjects()
			fmt.Printf("%s✓ removed %d empty project(s)%s\n", colorGreen, removed, colorReset)
		case "settings":
			cli.settingsFlow(arg)
		case "quit", "exit":
			cli.directory.Save()
			fmt.Println("bye")
			return
		default:
			fmt.Printf("%sunknown command %q - type 'help'%s\n", colorYellow, cmd, colorReset)
		}
	}
}

func (cli *CLI) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  project <name>      set the active project grouping")
	fmt.Println("  upload <path>       upload a file (pdf, docx, txt, md, html, images)")
	fmt.Println("  files               list uploaded files")
	fmt.Println("  generate <kind>     generate summary|explanation|exercise|solution from uploads")
	fmt.Println("  docs                list documents")
	fmt.Println("  open <id>           open a document (binds chat to it)")
	fmt.Println("  delete <id>         delete a document")
	fmt.Println("  search <query>      search documents")
	fmt.Println("  ask <question>      ask the assistant about the open document")
	fmt.Println("  sessions            list chat sessions")
	fmt.Println("  switch <id>         switch to another chat session")
	fmt.Println("  newchat             start a fresh chat session")
	fmt.Println("  delchat <id>        delete a chat session")
	fmt.Println("  export <project>    export a project's library to disk")
	fmt.Println("  cleanup             remove empty library projects")
	fmt.Println("  settings [k v]      show or change preferences (theme, language, autosave, format)")
	fmt.Println("  quit                save and exit")
}

func (cli *CLI) setProject(name string) {
	if name == "" {
		fmt.Printf("active project: %s\n", cli.project)
		return
	}
	cli.project = name
	cli.directory.SetProject(name)
	fmt.Printf("%s✓ active project: %s%s\n", colorGreen, name, colorReset)
}

func (cli *CLI) uploadFlow(path string) {
	if path == "" {
		fmt.Printf("%susage: upload <path>%s\n", colorYellow, colorReset)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("%s❌ read failed: %v%s\n", colorRed, err, colorReset)
		return
	}
	file, err := cli.uploads.Ingest(cli.ctx, filepath.Base(path), content, cli.project)
	if err != nil {
		fmt.Printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
		if file == nil {
			return
		}
	}
	fmt.Printf("%s✓ uploaded %s (%s, %d bytes)%s\n", colorGreen, file.Name, file.Type, file.Size, colorReset)
	fmt.Printf("  id: %s\n  preview: %s\n", file.ID, file.Preview)
}

func (cli *CLI) listFiles() {
	files := cli.uploads.List()
	if len(files) == 0 {
		fmt.Println("no uploaded files")
		return
	}
	for _, f := range files {
		fmt.Printf("  %s  %-30s %s\n", f.ID, f.Name, f.Type)
	}
}

// generateFlow builds a document of the requested kind from every uploaded
// file's extracted text. A failed AI call still yields a document - tagged
// simulated, with the provenance note inside the content.
func (cli *CLI) generateFlow(kindArg string) {
	kind := llm.Kind(kindArg)

	files := cli.uploads.List()
	if len(files) == 0 {
		fmt.Printf("%s⚠ no uploaded files - upload some material first%s\n", colorYellow, colorReset)
		return
	}

	var source strings.Builder
	sourceRefs := make([]models.SourceFileRef, 0, len(files))
	title := strings.TrimSuffix(files[0].Name, filepath.Ext(files[0].Name))
	for _, f := range files {
		if f.Type == models.FileTypeImage {
			continue
		}
		fmt.Fprintf(&source, "## %s\n\n%s\n\n", f.Name, f.Content)
		sourceRefs = append(sourceRefs, models.SourceFileRef{Name: f.Name, Type: string(f.Type)})
	}

	req := &llm.Request{
		Kind:       kind,
		Title:      title,
		SourceText: source.String(),
	}
	parentExerciseID := ""
	if kind == llm.KindSolution {
		if cli.lastExercise == nil {
			fmt.Printf("%s⚠ generate an exercise first%s\n", colorYellow, colorReset)
			return
		}
		req.SourceText = cli.lastExercise.Content
		req.Title = cli.lastExercise.Title
		parentExerciseID = cli.lastExercise.ID
	}

	result, err := cli.responder.Respond(cli.ctx, req)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	if result.Degraded {
		fmt.Printf("%s⚠ AI service unavailable - showing simulated content%s\n", colorYellow, colorReset)
	}

	doc := &models.Document{
		Title:            fmt.Sprintf("%s - %s", capitalize(string(kind)), req.Title),
		Type:             models.DocumentType(kind),
		Content:          result.Content,
		SourceFiles:      sourceRefs,
		ParentExerciseID: parentExerciseID,
		AIType:           result.AIType,
	}
	saved, err := cli.registry.Save(doc, cli.project)
	if err != nil {
		fmt.Printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
		if saved == nil {
			return
		}
	}
	if saved.Type == models.DocumentTypeExercise {
		cli.lastExercise = saved
	}

	fmt.Printf("%s✓ %s saved (id %s, ai %s)%s\n", colorGreen, saved.Type, saved.ID, saved.AIType, colorReset)
	cli.show(saved)
}

func (cli *CLI) listDocs() {
	docs := cli.registry.List()
	if len(docs) == 0 {
		fmt.Println("no documents")
		return
	}
	for _, d := range docs {
		fmt.Printf("  %s  %-12s %s\n", d.ID, d.Type, d.Title)
	}
}

func (cli *CLI) openDoc(id string) {
	doc := cli.registry.Get(id)
	if doc == nil {
		fmt.Printf("%s⚠ no document %q%s\n", colorYellow, id, colorReset)
		return
	}
	cli.currentDoc = doc
	cli.signal.Publish(display.Document{
		ID:    doc.ID,
		Title: doc.Title,
		Type:  string(doc.Type),
	})
	cli.show(doc)
}

func (cli *CLI) deleteDoc(id string) {
	cli.registry.Delete(id, cli.project)
	if cli.currentDoc != nil && cli.currentDoc.ID == id {
		cli.currentDoc = nil
	}
	fmt.Printf("%s✓ document deleted%s\n", colorGreen, colorReset)
}

func (cli *CLI) searchDocs(query string) {
	matches := cli.registry.Search(query)
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, d := range matches {
		fmt.Printf("  %s  %-12s %s\n", d.ID, d.Type, d.Title)
	}
}

// askFlow commits the user question and the AI answer as one save, not two.
func (cli *CLI) askFlow(question string) {
	if question == "" {
		fmt.Printf("%susage: ask <question>%s\n", colorYellow, colorReset)
		return
	}

	cli.directory.AppendMessage(models.Message{
		Type:    models.MessageTypeUser,
		Content: question,
	})

	req := &llm.Request{
		Kind:     llm.KindChat,
		Question: question,
	}
	if cli.currentDoc != nil {
		req.Title = cli.currentDoc.Title
		req.SourceText = cli.currentDoc.Content
	}
	result, err := cli.responder.Respond(cli.ctx, req)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}

	cli.directory.AppendMessage(models.Message{
		Type:    models.MessageTypeAI,
		Content: result.Content,
	})
	cli.directory.Save()

	fmt.Printf("\n%s%s%s\n", colorCyan, result.Content, colorReset)
	if result.AIType == models.AITypeSimulated {
		fmt.Printf("%s(simulated response)%s\n", colorYellow, colorReset)
	}
}

func (cli *CLI) listSessions() {
	current := cli.directory.Current()
	for _, s := range cli.directory.Sessions() {
		marker := " "
		if current != nil && s.ID == current.ID {
			marker = "*"
		}
		fmt.Printf(" %s %s  %-30s doc:%s msgs:%d\n", marker, s.ID, s.Title, s.DocID, len(s.Messages))
	}
}

// exportFlow writes each artifact as an individual file - no archive step.
func (cli *CLI) exportFlow(project string) {
	if project == "" {
		project = cli.project
	}
	artifacts := cli.projector.ExportProject(project)
	if artifacts == nil {
		fmt.Printf("%s⚠ no project %q in the library%s\n", colorYellow, project, colorReset)
		return
	}

	exportDir := filepath.Join(cli.cfg.DataDir, "export", project)
	for _, artifact := range artifacts {
		dir := filepath.Join(exportDir, artifact.Folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
			return
		}
		path := filepath.Join(dir, artifact.FileName)
		if err := os.WriteFile(path, []byte(artifact.Content), 0644); err != nil {
			fmt.Printf("%s❌ write %s: %v%s\n", colorRed, artifact.FileName, err, colorReset)
			return
		}
	}
	fmt.Printf("%s✓ exported %d artifact(s) to %s%s\n", colorGreen, len(artifacts), exportDir, colorReset)
}

func (cli *CLI) settingsFlow(arg string) {
	settings := cli.store.Settings()
	if arg == "" {
		fmt.Printf("  theme:    %s\n  language: %s\n  autosave: %t\n  format:   %s\n",
			settings.Theme, settings.Language, settings.AutoSave, settings.ExportFormat)
		return
	}

	key, value := splitCommand(arg)
	if value == "" {
		fmt.Printf("%susage: settings <key> <value>%s\n", colorYellow, colorReset)
		return
	}
	switch key {
	case "theme":
		settings.Theme = value
	case "language":
		settings.Language = value
	case "autosave":
		settings.AutoSave = value == "true"
	case "format":
		settings.ExportFormat = value
	default:
		fmt.Printf("%sunknown setting %q%s\n", colorYellow, key, colorReset)
		return
	}
	if !cli.store.SaveSettings(settings) {
		fmt.Printf("%s⚠ settings could not be persisted%s\n", colorYellow, colorReset)
		return
	}
	fmt.Printf("%s✓ %s = %s%s\n", colorGreen, key, value, colorReset)
}

func (cli *CLI) show(doc *models.Document) {
	fmt.Printf("\n%s── %s ──%s\n", colorBlue, doc.Title, colorReset)
	fmt.Println(doc.Content)
}

func (cli *CLI) readLine() string {
	if !cli.scanner.Scan() {
		return "quit"
	}
	return strings.TrimSpace(cli.scanner.Text())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}
