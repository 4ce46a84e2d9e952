/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/go-logr/logr"

	"github.com/kdex-tech/kdex-splitscreen/internal/block"
	"github.com/kdex-tech/kdex-splitscreen/internal/cache"
	"github.com/kdex-tech/kdex-splitscreen/internal/config"
	"github.com/kdex-tech/kdex-splitscreen/internal/host"
	"github.com/kdex-tech/kdex-splitscreen/internal/library"
	"github.com/kdex-tech/kdex-splitscreen/internal/page"
	"github.com/kdex-tech/kdex-splitscreen/internal/web/server"

	_ "net/http/pprof"
)

func main() {
	var configFile string
	var dumpConfig bool
	var pprofAddr string
	var webserverAddr string

	flag.StringVar(&configFile, "config-file", "", "The path to a configuration yaml file. Built in defaults "+
		"apply when empty.")
	flag.BoolVar(&dumpConfig, "dump-config", false, "Print the effective configuration and exit.")
	flag.StringVar(&pprofAddr, "pprof-bind-address", "", "The address the pprof endpoint binds to. If not set, the pprof endpoint is disabled.")
	flag.StringVar(&webserverAddr, "webserver-bind-address", "", "The address the webserver binds to. Overrides server.addr.")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if webserverAddr != "" {
		cfg.Server.Addr = webserverAddr
	}

	if dumpConfig {
		data, err := config.Dump(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	logger, flush, err := cfg.Logging.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, logger, pprofAddr); err != nil {
		logger.WithName("setup").Error(err, "exiting")
		flush()
		os.Exit(1)
	}
	flush()
}

func run(cfg *config.Config, logger logr.Logger, pprofAddr string) error {
	setupLog := logger.WithName("setup")

	blocks := block.NewRegistry(logger.WithName("blocks"))
	def, err := block.Register(blocks, cfg.Site.AssetsDir, cfg.Site.AssetsPrefix)
	if err != nil {
		return fmt.Errorf("unable to register block: %w", err)
	}
	setupLog.Info("registered block", "name", def.Name, "version", def.Script.Version)

	cacheManager, err := cache.NewManager(cfg.Cache.Addr, cfg.Site.Organization, cfg.Cache.TTL, logger.WithName("cache"))
	if err != nil {
		return fmt.Errorf("unable to create cache manager: %w", err)
	}
	defer cacheManager.Close()

	opts := host.Options{
		AssetsDir:       cfg.Site.AssetsDir,
		AssetsPrefix:    cfg.Site.AssetsPrefix,
		Block:           def,
		Blocks:          blocks,
		CacheManager:    cacheManager,
		DefaultLanguage: cfg.Site.DefaultLanguage,
		EditorIssuer:    cfg.Editor.Issuer,
		Languages:       cfg.Site.Languages,
		Library:         library.New(cfg.Site.MediaPrefix, cfg.Site.MaxUpload, logger.WithName("library")),
		MediaPrefix:     cfg.Site.MediaPrefix,
		Organization:    cfg.Site.Organization,
		PagesFile:       cfg.Site.PagesFile,
		Translations:    cfg.Site.Translations,
	}
	if cfg.Editor.Enabled {
		opts.EditorSecret = []byte(cfg.Editor.Secret.Value())
	}

	hostHandler, err := host.NewHostHandler(opts, logger.WithName("host"))
	if err != nil {
		return fmt.Errorf("unable to create host handler: %w", err)
	}
	defer hostHandler.Close()

	if err := loadPages(hostHandler.Pages, cfg.Site.PagesFile, cfg.Site.Organization); err != nil {
		return err
	}
	setupLog.Info("pages loaded", "count", hostHandler.Pages.Count(), "editor", hostHandler.EditorEnabled())

	if pprofAddr != "" && strings.Contains(pprofAddr, ":") {
		setupLog.Info("starting pprof server", "address", pprofAddr)
		go func() {
			runtime.SetBlockProfileRate(1)
			log.Println(http.ListenAndServe(pprofAddr, nil))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server.Addr, hostHandler, logger.WithName("http"))
	return server.Run(ctx, srv, cfg.Server.ShutdownTimeout, setupLog)
}

// loadPages reads the pages file, or seeds an empty home page when there is none yet.
func loadPages(pages *page.PageStore, path string, organization string) error {
	if path != "" {
		err := pages.LoadFile(path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to load pages: %w", err)
		}
	}

	pages.Set(page.Page{
		BasePath: "/",
		Label:    organization,
		Name:     "home",
	})
	if path != "" {
		return pages.SaveFile(path)
	}
	return nil
}
