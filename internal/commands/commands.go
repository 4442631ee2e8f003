// Package commands 实现 market 命令行工具的命令树。
package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/client"
	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/domain"
	"github.com/MorseWayne/gift_market/internal/logger"
)

// rootOptions 为所有子命令共享的全局参数
type rootOptions struct {
	BaseURL  string
	TokenDir string
	Timeout  time.Duration
	Verbose  bool

	logger *zap.Logger
	client *client.Client
	tokens client.TokenStore
}

// New 创建根命令
func New() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "market",
		Short:         "Browse the gift market catalog and manage your wallet.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.complete(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&o.BaseURL, "base-url", "", "Market API base URL (default $MARKET_API_BASE_URL).")
	cmd.PersistentFlags().StringVar(&o.TokenDir, "token-dir", "", "Directory holding the auth token (default $MARKET_TOKEN_DIR).")
	cmd.PersistentFlags().DurationVar(&o.Timeout, "timeout", 0, "Request timeout (default $MARKET_API_TIMEOUT).")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "Log debug output to stderr.")

	AddCommands(cmd, o)
	return cmd
}

// AddCommands 注册全部子命令
func AddCommands(topLevel *cobra.Command, o *rootOptions) {
	addBrowse(topLevel, o)
	addGifts(topLevel, o)
	addOptions(topLevel, o)
	addProfile(topLevel, o)
	addDeposit(topLevel, o)
	addWithdraw(topLevel, o)
	addTransactions(topLevel, o)
	addToken(topLevel, o)
}

// complete 用配置补齐未显式设置的参数，并创建日志器与客户端
func (o *rootOptions) complete(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("base-url") {
		o.BaseURL = cfg.MarketAPI.BaseURL
	}
	if !flags.Changed("token-dir") {
		o.TokenDir = cfg.MarketAPI.TokenDir
	}
	if !flags.Changed("timeout") {
		o.Timeout = cfg.MarketAPI.Timeout
	}

	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	o.logger, err = logger.New("dev", level, "console", "market", cfg.App.Version)
	if err != nil {
		return err
	}

	o.tokens = client.NewDiskTokenStore(o.TokenDir)
	o.client = client.New(client.Config{BaseURL: o.BaseURL, Timeout: o.Timeout}, o.tokens, o.logger)
	return nil
}

// userError 将客户端错误转换为可展示的错误，字段校验错误原样返回
func userError(err error, fallback string) error {
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		return err
	}
	return errors.New(client.Message(err, fallback))
}
