package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/antoniovieira1/api-solicitacao-servico/config"
	"github.com/antoniovieira1/api-solicitacao-servico/directory"
	"github.com/antoniovieira1/api-solicitacao-servico/handlers"
	"github.com/antoniovieira1/api-solicitacao-servico/jobs"
	"github.com/antoniovieira1/api-solicitacao-servico/notify"
	"github.com/antoniovieira1/api-solicitacao-servico/routes"
	"github.com/antoniovieira1/api-solicitacao-servico/views"
	"github.com/antoniovieira1/api-solicitacao-servico/workflow"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}
	config.Connect()
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dir := directory.NewClient(os.Getenv("DIRECTORY_URL"), directoryTTL())
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if _, err := jobs.StartDirectoryRefresh(dir, logger); err != nil {
		log.Fatalf("could not schedule directory refresh: %v", err)
	}

	dispatcher := notify.NewDispatcher(config.DB, buildNotifier())
	assembler := views.NewAssembler(config.DB, dir)
	engine := workflow.NewEngine(config.DB, dispatcher, assembler)
	handlers.Init(dir, dispatcher, assembler, engine)

	handler := routes.RegisterRoutes()
	handlerWithCORS := enableCORS(handler)
	log.Println("Server starting at port", port)
	log.Fatal(http.ListenAndServe(":"+port, handlerWithCORS))
}

func directoryTTL() time.Duration {
	raw := os.Getenv("DIRECTORY_CACHE_TTL")
	if raw == "" {
		return directory.DefaultTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ DIRECTORY_CACHE_TTL invalido (%q), usando padrao", raw)
		return directory.DefaultTTL
	}
	return ttl
}

// buildNotifier assembles the delivery channels from the environment: the
// legacy mail scripts always, Slack when a webhook is configured.
func buildNotifier() notify.Notifier {
	channels := notify.MultiNotifier{notify.NewScriptNotifier(os.Getenv("MAIL_SCRIPT_DIR"))}
	if webhook := os.Getenv("SLACK_WEBHOOK_URL"); webhook != "" {
		channels = append(channels, notify.NewSlackNotifier(webhook))
	}
	return channels
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-api-key, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
