package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoshinonyaruko/stgy-share/api"
	"github.com/hoshinonyaruko/stgy-share/codec"
	"github.com/hoshinonyaruko/stgy-share/config"
	"github.com/hoshinonyaruko/stgy-share/sqlite"
	"github.com/hoshinonyaruko/stgy-share/structs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stgy-share",
		Short:         "攻略板分享码编解码工具",
		Long:          "Encode strategy boards into [stgy:...] share codes, decode codes back, and optionally serve both over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newServeCmd())
	return root
}

// newEncodeCmd 从文件或标准输入读取攻略板 JSON，输出分享码。
func newEncodeCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "encode [board.json]",
		Short: "把攻略板 JSON 编码成分享码",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				inPath = args[0]
			}
			data, err := readInput(inPath)
			if err != nil {
				return err
			}
			var board structs.Board
			if err := json.Unmarshal(data, &board); err != nil {
				return fmt.Errorf("invalid board json: %w", err)
			}
			code, err := codec.Encode(&board)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "board JSON file (default stdin)")
	return cmd
}

// newDecodeCmd 把分享码还原成攻略板 JSON。
func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [code]",
		Short: "把分享码还原成攻略板 JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 1 {
				code = args[0]
			} else {
				data, err := readInput("")
				if err != nil {
					return err
				}
				code = strings.TrimSpace(string(data))
			}
			board, err := codec.Decode(code)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(board, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return cmd
}

// newServeCmd 启动 HTTP 服务。
func newServeCmd() *cobra.Command {
	var confPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动编解码与攻略板库 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			conf, err := config.LoadConfig(confPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.WatchConfig(confPath, logger); err != nil {
				logger.Warn("config hot reload unavailable", zap.Error(err))
			}

			db, err := sqlite.InitializeDB(conf.DBPath)
			if err != nil {
				return fmt.Errorf("open board library: %w", err)
			}
			defer db.Close()

			addr := fmt.Sprintf(":%d", conf.Port)
			logger.Info("listening", zap.String("addr", addr), zap.String("db", conf.DBPath))
			return api.NewRouter(db, logger).Run(addr)
		},
	}
	cmd.Flags().StringVarP(&confPath, "config", "c", "config.json", "config file path")
	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
