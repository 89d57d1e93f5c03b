package config

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// AppConfig 服务端运行配置。
type AppConfig struct {
	Port       int    `json:"port"`       // HTTP 监听端口
	DBPath     string `json:"dbPath"`     // 攻略板库 sqlite 文件
	ListLimit  int    `json:"listLimit"`  // /boards 默认返回条数
	TrustProxy bool   `json:"trustProxy"` // 是否信任反向代理头
}

var (
	instance *AppConfig
	loadErr  error
	mu       sync.RWMutex
	once     sync.Once
)

func defaultConfig() *AppConfig {
	return &AppConfig{
		Port:      18630,
		DBPath:    "boards.db",
		ListLimit: 50,
	}
}

// LoadConfig 读取配置文件，不存在时写出默认配置再返回。
// 进程内只读取一次，热更新交给 WatchConfig。首次读取失败的话，
// 之后的调用原样返回同一个错误。
func LoadConfig(path string) (*AppConfig, error) {
	once.Do(func() {
		conf, err := readConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		mu.Lock()
		instance = conf
		mu.Unlock()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	mu.RLock()
	defer mu.RUnlock()
	return instance, nil
}

func readConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		conf := defaultConfig()
		if werr := writeConfig(path, conf); werr != nil {
			return nil, werr
		}
		return conf, nil
	}
	if err != nil {
		return nil, err
	}
	conf := defaultConfig()
	if err := json.Unmarshal(data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func writeConfig(path string, conf *AppConfig) error {
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Get 返回当前配置的副本。
func Get() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return *defaultConfig()
	}
	return *instance
}

// WatchConfig 监听配置文件变更并热加载。Watcher 随进程生存，
// 调用方无需关闭。
func WatchConfig(path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				conf, err := readConfig(path)
				if err != nil {
					logger.Warn("reload config failed", zap.String("path", path), zap.Error(err))
					continue
				}
				mu.Lock()
				instance = conf
				mu.Unlock()
				logger.Info("config reloaded", zap.String("path", path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
