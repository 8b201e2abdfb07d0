package daemon

import (
	"errors"
	"net/http"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pinekb/kbatt/pkg/config"
	"github.com/pinekb/kbatt/pkg/version"
)

func getTelemetry(c *gin.Context) {
	snap, _, err := loop.telemetry()
	if err != nil {
		logrus.Errorf("getTelemetry failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, snap)
}

func getMemory(c *gin.Context) {
	_, mem, err := loop.telemetry()
	if err != nil {
		logrus.Errorf("getMemory failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, mem)
}

// variantInfo is the /variant response.
type variantInfo struct {
	Name                    string   `json:"name"`
	Limits                  []uint32 `json:"limits"`
	DefaultLimit            uint32   `json:"defaultLimit"`
	MaxLimit                uint32   `json:"maxLimit"`
	OfflineThresholdSeconds int      `json:"offlineThresholdSeconds"`
}

func getVariant(c *gin.Context) {
	v := loop.variant
	c.IndentedJSON(http.StatusOK, variantInfo{
		Name:                    v.String(),
		Limits:                  v.Limits(),
		DefaultLimit:            v.DefaultLimit(),
		MaxLimit:                v.MaxLimit(),
		OfflineThresholdSeconds: int(v.OfflineThreshold().Seconds()),
	})
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getBatteries(c *gin.Context) {
	batteries, err := battery.GetAll()
	if err != nil {
		logrus.Errorf("getBatteries failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if len(batteries) == 0 {
		logrus.Errorf("no batteries found")
		c.IndentedJSON(http.StatusInternalServerError, "no batteries found")
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no batteries found"))
		return
	}

	for _, bat := range batteries {
		if bat.State == battery.Discharging {
			bat.ChargeRate = -bat.ChargeRate
		}
	}

	c.IndentedJSON(http.StatusOK, batteries)
}

func forceTick(c *gin.Context) {
	if err := loop.tick(); err != nil {
		logrus.Errorf("forced tick failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, "ok")
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
