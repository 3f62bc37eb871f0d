package main

import (
	"collab-editor-server/handlers/api/documents"
	"collab-editor-server/handlers/api/rooms"
	"collab-editor-server/handlers/websocket"
	"collab-editor-server/stores"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func waitForShutdown(ioo *socketio.Server, saver *websocket.Saver) {
	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	fmt.Println("Shutting down...")
	ioo.Close(nil)
	saver.Close()
	os.Exit(0)
}

func main() {
	logLevel := flag.String("loglevel", "info", "Set the logging level: debug, info, warn, error, fatal, panic")
	listenAddr := flag.String("listen", ":5000", "Set the server listen address")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	documentStore := stores.GetStore()
	registry := websocket.NewRegistry()
	saver := websocket.NewSaver(documentStore, 0)
	relay := websocket.NewRelay(registry, documentStore, saver)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	corsOptions := cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if origin == "" {
				return false
			}

			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}

			switch parsed.Scheme {
			case "http", "https":
				switch parsed.Hostname() {
				case "localhost", "127.0.0.1", "[::1]":
					return true
				}
			}

			return false
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	r.Use(cors.Handler(corsOptions))

	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", documents.HandleList(documentStore))
		r.Post("/", documents.HandleCreate(documentStore))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", documents.HandleGet(documentStore))
			r.Put("/", documents.HandleUpdate(documentStore))
			r.Delete("/", documents.HandleDelete(documentStore))
		})
	})

	r.Get("/api/rooms", rooms.HandleList(registry))

	ioo := websocket.SetupSocketIO(relay)
	r.Handle("/socket.io/", ioo.ServeHandler(nil))

	logrus.WithField("addr", *listenAddr).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddr, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo, saver)
}
