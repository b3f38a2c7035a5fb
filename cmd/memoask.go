package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rabithua/memoask/common"
	"github.com/rabithua/memoask/plugin/llm"
	"github.com/rabithua/memoask/server"
	_profile "github.com/rabithua/memoask/server/profile"
	"github.com/rabithua/memoask/store"
	"github.com/rabithua/memoask/store/db"
)

const (
	greetingBanner = `
 __  __                       _        _
|  \/  | ___ _ __ ___   ___  / \   ___| | __
| |\/| |/ _ \ '_ ' _ \ / _ \/ _ \ / __| |/ /
| |  | |  __/ | | | | | (_) / ___ \\__ \   <
|_|  |_|\___|_| |_| |_|\___/_/   \_\___/_|\_\
`
	shutdownTimeout = 10 * time.Second
)

var (
	profile *_profile.Profile
	mode    string
	addr    string
	port    int
	data    string

	rootCmd = &cobra.Command{
		Use:   "memoask",
		Short: "A memo service that answers questions from your own memos.",
		RunE: func(_cmd *cobra.Command, _args []string) error {
			logger, err := newLogger(profile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if profile.Secret == "" {
				profile.Secret = common.GenUUID()
				logger.Warn("no session secret configured, sessions will not survive a restart")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			database := db.NewDB(profile)
			if err := database.Open(ctx); err != nil {
				logger.Error("failed to open database", zap.Error(err))
				return err
			}
			defer database.Close()

			reasoner, err := newReasoner(profile, logger)
			if err != nil {
				logger.Error("failed to create reasoning client", zap.Error(err))
				return err
			}

			s, err := server.NewServer(ctx, profile, store.New(database.DBInstance, profile), reasoner, logger)
			if err != nil {
				logger.Error("failed to create server", zap.Error(err))
				return err
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			// The default signal sent by the `kill` command is SIGTERM,
			// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-c
				logger.Info("signal received", zap.String("signal", sig.String()))
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()
				if err := s.Shutdown(shutdownCtx); err != nil {
					logger.Error("failed to shutdown server", zap.Error(err))
				}
				cancel()
			}()

			println(greetingBanner)
			fmt.Printf("Version %s has started at :%d\n", profile.Version, profile.Port)
			if err := s.Start(ctx); err != nil {
				logger.Error("failed to start server", zap.Error(err))
				return err
			}

			// Wait for CTRL-C.
			<-ctx.Done()
			return nil
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", "", "address of server")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 8081, "port of server")
	rootCmd.PersistentFlags().StringVarP(&data, "data", "d", "", "data directory")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign sessions")
	rootCmd.PersistentFlags().String("super-admin-id", "admin", "user id never disclosed by author lookups")
	rootCmd.PersistentFlags().String("secret-marker", "", "marker the assistant must never reveal")
	rootCmd.PersistentFlags().StringSlice("trusted-networks", []string{"172.16.0.0/12"}, "CIDRs exempt from the search rate limit")
	rootCmd.PersistentFlags().String("llm-api-key", "", "API key of the reasoning service")
	rootCmd.PersistentFlags().String("llm-base-url", "", "base URL of an OpenAI compatible reasoning service")
	rootCmd.PersistentFlags().String("llm-model", "gpt-4o-mini", "model of the reasoning service")
	rootCmd.PersistentFlags().Int("llm-timeout", 30, "reasoning service timeout in seconds")

	bindings := map[string]string{
		"mode":             "mode",
		"addr":             "addr",
		"port":             "port",
		"data":             "data",
		"dsn":              "dsn",
		"secret":           "secret",
		"super-admin-id":   "super-admin-id",
		"secret-marker":    "secret-marker",
		"trusted-networks": "trusted-networks",
		"llm.api-key":      "llm-api-key",
		"llm.base-url":     "llm-base-url",
		"llm.model":        "llm-model",
		"llm.timeout":      "llm-timeout",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetDefault("mode", "demo")
	viper.SetDefault("port", 8081)
	viper.SetDefault("super-admin-id", "admin")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", 30)
	viper.SetEnvPrefix("memos")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

func initConfig() {
	viper.AutomaticEnv()
	var err error
	profile, err = _profile.GetProfile()
	if err != nil {
		fmt.Printf("failed to get profile, error: %+v\n", err)
		os.Exit(1)
	}

	println("---")
	println("Server profile")
	println("dsn:", profile.DSN)
	println("addr:", profile.Addr)
	println("port:", profile.Port)
	println("mode:", profile.Mode)
	println("version:", profile.Version)
	println("---")
}

func newLogger(profile *_profile.Profile) (*zap.Logger, error) {
	if profile.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newReasoner(profile *_profile.Profile, logger *zap.Logger) (llm.Reasoner, error) {
	if profile.LLM.APIKey == "" {
		// Only reachable outside prod, which requires a key.
		logger.Warn("no llm api key configured, assistant features are disabled")
		return llm.ReasonerFunc(func(context.Context, *llm.Request) (*llm.Response, error) {
			return nil, fmt.Errorf("reasoning service is not configured")
		}), nil
	}
	return llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  profile.LLM.APIKey,
		BaseURL: profile.LLM.BaseURL,
		Model:   profile.LLM.Model,
		Timeout: time.Duration(profile.LLM.Timeout) * time.Second,
	})
}
