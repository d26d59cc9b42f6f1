package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/config"
	"github.com/lindenhall/squire/internal/database"
	"github.com/lindenhall/squire/internal/dispatch"
	"github.com/lindenhall/squire/internal/irc"
	"github.com/lindenhall/squire/internal/lastfm"
	"github.com/lindenhall/squire/internal/logging"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/server"
	"github.com/lindenhall/squire/internal/store"
	"github.com/lindenhall/squire/internal/youtube"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "squire",
		Short: "Squire IRC bot",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("irc-server", defaults.GetString("irc.server"), "IRC server hostname")
	cmd.PersistentFlags().Int("irc-port", defaults.GetInt("irc.port"), "IRC server port (TLS)")
	cmd.PersistentFlags().String("irc-nick", defaults.GetString("irc.nick"), "Bot nickname")
	cmd.PersistentFlags().String("irc-channels", defaults.GetString("irc.channels"), "Comma-separated channels to join")
	cmd.PersistentFlags().String("masters", defaults.GetString("bot.masters"), "Comma-separated privileged nicks")
	cmd.PersistentFlags().Bool("url-preview", defaults.GetBool("bot.url_preview"), "Announce YouTube links pasted in channels")
	cmd.PersistentFlags().String("lastfm-api-key", "", "Last.fm API key")
	cmd.PersistentFlags().String("youtube-api-key", "", "YouTube Data API key")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "Ops HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "irc.server", "irc-server")
	bindFlag(cmd, "irc.port", "irc-port")
	bindFlag(cmd, "irc.nick", "irc-nick")
	bindFlag(cmd, "irc.channels", "irc-channels")
	bindFlag(cmd, "bot.masters", "masters")
	bindFlag(cmd, "bot.url_preview", "url-preview")
	bindFlag(cmd, "lastfm.api_key", "lastfm-api-key")
	bindFlag(cmd, "youtube.api_key", "youtube-api-key")
	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runBot(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	snapshots, err := database.NewSnapshotStore(db)
	if err != nil {
		return err
	}

	moods, err := mood.NewTable(mood.TableConfig{})
	if err != nil {
		return err
	}

	bridge, err := irc.NewBridge(irc.BridgeConfig{
		Server:   appConfig.IRCServer,
		Port:     appConfig.IRCPort,
		Nick:     appConfig.IRCNick,
		Channels: appConfig.IRCChannels,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	dispatcher := server.NewLineDispatcher()
	emitter := &server.TapEmitter{Next: bridge, Dispatcher: dispatcher}

	socialStore, err := store.NewService(store.ServiceConfig{
		Snapshots: snapshots,
		Emitter:   emitter,
		Moods:     moods,
		Masters:   appConfig.Masters,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	blob, err := snapshots.Load()
	if err != nil {
		return err
	}
	socialStore.Restore(blob)

	lastfmClient, err := lastfm.NewClient(lastfm.ClientConfig{
		APIKey:  appConfig.LastFMAPIKey,
		Emitter: emitter,
		Moods:   moods,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	youtubeClient, err := youtube.NewClient(youtube.ClientConfig{
		APIKey:  appConfig.YouTubeAPIKey,
		Emitter: emitter,
		Moods:   moods,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	engine, err := dispatch.NewEngine(dispatch.Config{
		Store:      socialStore,
		Moods:      moods,
		Emitter:    emitter,
		LastFM:     lastfmClient,
		YouTube:    youtubeClient,
		Masters:    appConfig.Masters,
		URLPreview: appConfig.URLPreview,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	bridge.Bind(engine)

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:      socialStore,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("ops server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("connecting to irc",
			zap.String("server", appConfig.IRCServer),
			zap.String("channels", strings.Join(appConfig.IRCChannels, ",")))
		if err := bridge.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-signalCtx.Done():
	case err := <-errCh:
		return err
	}

	bridge.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
