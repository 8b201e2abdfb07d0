// Package daemon wires the arbitration loop to its process surface: the
// unix-socket HTTP API, config reload, and signal handling.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pinekb/kbatt/pkg/config"
	"github.com/pinekb/kbatt/pkg/power"
	"github.com/pinekb/kbatt/pkg/variant"
)

var (
	loop *controlLoop
	conf config.Config
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/telemetry", getTelemetry)
	router.GET("/memory", getMemory)
	router.GET("/variant", getVariant)
	router.GET("/config", getConfig)
	router.GET("/batteries", getBatteries)
	router.GET("/version", getVersion)
	router.PUT("/tick", forceTick)

	return router
}

// Run starts the daemon and blocks until SIGINT/SIGTERM.
func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	hw, err := pickVariant(conf)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.WithFields(logrus.Fields{
		"variant": hw.String(),
		"limits":  hw.Limits(),
	}).Info("hardware variant selected")

	loop = newControlLoop(power.NewDevice(hw), hw, conf.PollInterval())

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	stop := make(chan struct{})
	go func() {
		logrus.Debugln("control loop starts")

		loop.run(stop)

		logrus.Debugln("control loop stopped")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	close(stop)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("restoring default limits before exiting")
	if err := loop.restoreDefaults(); err != nil {
		logrus.Errorf("failed to restore default limits: %v", err)
	}

	logrus.Info("exiting")
	return nil
}

// pickVariant honors a config override, then falls back to probing the
// hardware. An unidentifiable device is a startup failure.
func pickVariant(conf config.Config) (variant.Variant, error) {
	if name := conf.Variant(); name != "" {
		return variant.Parse(name)
	}
	return variant.Detect()
}
