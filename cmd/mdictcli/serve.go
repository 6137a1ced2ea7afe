package main

import (
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdictgo/mdict"
	"github.com/mdictgo/mdict/internal/config"
	"github.com/mdictgo/mdict/internal/online"
	"github.com/mdictgo/mdict/internal/render"
)

// server is the HTTP front end a GUI or tray frontend would sit on top of.
type server struct {
	dict     *mdict.TextDictionary
	res      *mdict.ResourceArchive
	online   *online.Client
	settings render.Settings
	state    *appState
}

func newServeCmd(state *appState) *cobra.Command {
	var addr string
	var enableOnline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookup/locate/prefix/info over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.mdxPath == "" {
				return errNoDictionary
			}
			dict, err := mdict.OpenText(state.mdxPath)
			if err != nil {
				return err
			}
			defer dict.Close()

			var res *mdict.ResourceArchive
			if state.mddPath != "" {
				res, err = mdict.OpenResource(state.mddPath)
				if err != nil {
					return err
				}
				defer res.Close()
			}

			cfg, _ := config.Load()
			cssPath := state.cssPath
			if cssPath == "" {
				cssPath = cfg.CSSFile
			}
			var css template.CSS
			if cssPath != "" {
				if data, err := os.ReadFile(cssPath); err == nil {
					css = template.CSS(data)
				} else {
					state.log.Warnw("could not read css file", "path", cssPath, "err", err)
				}
			}

			srv := &server{
				dict: dict,
				res:  res,
				settings: render.Settings{
					FontFamily: cfg.Display.FontFamily,
					FontSize:   cfg.Display.FontSize,
					LineHeight: cfg.Display.LineHeight,
					CSS:        css,
				},
				state: state,
			}
			if enableOnline {
				srv.online = online.NewClient(online.WithLogger(state.log))
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/lookup", srv.handleLookup)
			mux.HandleFunc("/locate", srv.handleLocate)
			mux.HandleFunc("/prefix", srv.handlePrefix)
			mux.HandleFunc("/info", srv.handleInfo)

			state.log.Infow("serving", "addr", addr, "mdx", state.mdxPath, "mdd", state.mddPath, "online", enableOnline)
			return http.ListenAndServe(addr, loggingMiddleware(state, mux))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8228", "address to listen on")
	cmd.Flags().BoolVar(&enableOnline, "online", false, "enable the /lookup online fallback")
	return cmd
}

func loggingMiddleware(state *appState, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		state.log.Debugw("request", "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		http.Error(w, "missing word query parameter", http.StatusBadRequest)
		return
	}

	html, found, err := render.Definition(s.dict, word, s.settings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if found {
		writeHTML(w, html)
		return
	}

	if s.online != nil {
		entries, err := s.online.Lookup(r.Context(), word)
		if err != nil {
			writeHTML(w, online.FormatError())
			return
		}
		html, err := online.FormatHTML(entries, word)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeHTML(w, html)
		return
	}

	writeHTML(w, render.NotFound(word))
}

func (s *server) handleLocate(w http.ResponseWriter, r *http.Request) {
	if s.res == nil {
		http.Error(w, errNoResourceArchive.Error(), http.StatusNotImplemented)
		return
	}
	name := r.URL.Query().Get("name")
	data, found, err := s.res.Locate(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

func (s *server) handlePrefix(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	cap := 20
	if v := r.URL.Query().Get("cap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cap = n
		}
	}
	words, err := s.dict.PrefixSearch(prefix, cap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, words)
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.dict.HeaderInfo())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
