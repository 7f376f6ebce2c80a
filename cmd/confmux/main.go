package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chris-y/confmux"
)

func main() {
	app := kingpin.New("confmux", "Inspect and edit layered key/value configuration files")
	files := app.Flag("file", "Config file to layer; later files take priority over earlier ones").Short('f').Strings()
	global := app.Flag("global", "Also layer the named file from $HOME at lowest priority").String()

	getCmd := app.Command("get", "Print a value from the highest-priority layer")
	getName := getCmd.Arg("name", "Variable name").Required().String()
	getAs := getCmd.Flag("as", "Coerce the value before printing").Default("string").Enum("string", "int", "bool")

	setCmd := app.Command("set", "Write a value into the highest-priority layer")
	setName := setCmd.Arg("name", "Variable name").Required().String()
	setValue := setCmd.Arg("value", "Raw string value").Required().String()

	listCmd := app.Command("list", "Print every key of every layer in priority order")

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := newLogger()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := buildStore(*files, *global)
	if err != nil {
		logger.Fatal("failed to open configuration", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close configuration", zap.Error(err))
		}
	}()

	switch command {
	case getCmd.FullCommand():
		if err := runGet(store, *getName, *getAs); err != nil {
			logger.Fatal("get failed", zap.String("name", *getName), zap.Error(err))
		}

	case setCmd.FullCommand():
		if err := store.SetString(*setName, *setValue); err != nil {
			logger.Fatal("set failed", zap.String("name", *setName), zap.Error(err))
		}

	case listCmd.FullCommand():
		err := store.ForEach(func(name, value string) error {
			fmt.Printf("%s=%s\n", name, value)
			return nil
		})
		if err != nil {
			logger.Fatal("list failed", zap.Error(err))
		}
	}
}

// buildStore layers the requested files, or falls back to discovery when
// none were named.
func buildStore(files []string, global string) (*confmux.Store, error) {
	builder := confmux.NewBuilder()

	if global != "" {
		builder.WithGlobalFile(global, 0)
	}
	for i, path := range files {
		builder.WithFile(path, i+1)
	}
	if len(files) == 0 && global == "" {
		builder.WithDiscovery(confmux.DefaultDiscoveryOptions("confmux"), os.Args[1:], 1)
	}

	return builder.Build()
}

func runGet(store *confmux.Store, name, as string) error {
	switch as {
	case "int":
		value, err := store.Int64(name)
		if err != nil {
			return err
		}
		fmt.Println(value)
	case "bool":
		value, err := store.Bool(name)
		if err != nil {
			return err
		}
		fmt.Println(value)
	default:
		value, err := store.String(name)
		if err != nil {
			return err
		}
		fmt.Println(value)
	}
	return nil
}

// newLogger creates a production-ready structured logger with JSON output.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
