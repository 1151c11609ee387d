// Package server puts the invariant and illuminant pipelines behind a
// small HTTP API. Images are uploaded as multipart field "image".
package server

import(
	"bytes"
	"image/png"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
	"github.com/abworrall/shadowfree/pkg/invariant"
	"github.com/abworrall/shadowfree/pkg/shadowfree"
)

type Server struct {
	Config shadowfree.Config
	router *gin.Engine
}

func New(cfg shadowfree.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{Config: cfg, router: gin.New()}
	s.router.Use(gin.Recovery())

	s.router.GET("/healthz", getHealthz)
	v1 := s.router.Group("/v1")
	{
		v1.POST("/invariant",  s.postInvariant)
		v1.POST("/illuminant", s.postIlluminant)
	}
	return s, nil
}

func (s *Server)Handler() http.Handler { return s.router }

// Run listens on addr until the listener fails.
func (s *Server)Run(addr string) error {
	log.Printf("serving on %s", addr)
	return s.router.Run(addr)
}

func getHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, emath.ErrConfiguration): return http.StatusUnprocessableEntity
	case errors.Is(err, emath.ErrInvalidInput):  return http.StatusBadRequest
	default:                                     return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	log.Warn().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func uploadedImage(c *gin.Context) (ecolor.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return ecolor.Image{}, emath.InvalidInputf("no image upload: %v", err)
	}
	f, err := fh.Open()
	if err != nil {
		return ecolor.Image{}, errors.Wrap(err, "open upload")
	}
	defer f.Close()

	img, err := shadowfree.DecodeImage(f)
	if err != nil {
		if errors.Is(err, emath.ErrInvalidInput) {
			return ecolor.Image{}, err
		}
		return ecolor.Image{}, emath.InvalidInputf("decoding %s: %v", fh.Filename, err)
	}
	return img, nil
}

type angleJSON struct {
	Degrees float64 `json:"degrees"`
	Entropy float64 `json:"entropy"`
}

type invariantResponse struct {
	Width            int         `json:"width"`
	Height           int         `json:"height"`
	MinAngleDegrees  float64     `json:"minAngleDegrees"`
	MinEntropy       float64     `json:"minEntropy"`
	LightingDegrees  float64     `json:"lightingAngleDegrees"`
	Sweep            []angleJSON `json:"sweep"`
}

// postInvariant runs the entropy pipeline. ?angles=N overrides the sweep
// size; ?format=png returns the invariant image instead of JSON.
func (s *Server)postInvariant(c *gin.Context) {
	cfg := s.Config.Invariant
	if str := c.Query("angles"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil {
			abortWith(c, emath.Configurationf("angles=%q: %v", str, err))
			return
		}
		cfg.NumAngles = n
	}

	analyzer, err := invariant.NewAnalyzer(cfg, invariant.DefaultBasis())
	if err != nil {
		abortWith(c, err)
		return
	}

	img, err := uploadedImage(c)
	if err != nil {
		abortWith(c, err)
		return
	}

	res, err := analyzer.Run(c.Request.Context(), img)
	if err != nil {
		abortWith(c, err)
		return
	}

	if c.Query("format") == "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, res.Invariant.ToGray()); err != nil {
			abortWith(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
		return
	}

	resp := invariantResponse{
		Width:           img.Dx(),
		Height:          img.Dy(),
		MinAngleDegrees: res.Sweep.MinAngle * 180 / math.Pi,
		MinEntropy:      res.Sweep.MinEntropy,
		LightingDegrees: res.Sweep.LightingAngle() * 180 / math.Pi,
	}
	for _, ae := range res.Sweep.Angles {
		resp.Sweep = append(resp.Sweep, angleJSON{Degrees: ae.Degrees(), Entropy: ae.Entropy})
	}
	c.JSON(http.StatusOK, resp)
}

type illuminantResponse struct {
	Method         string     `json:"method"`
	RGB            [3]float64 `json:"rgb"`
	Norm           float64    `json:"norm"`
	Intensity      float64    `json:"intensity"`
	Hex            string     `json:"hex"`
	SpecularPixels int        `json:"specularPixels"`
}

// postIlluminant estimates the light color. ?method= picks the estimator.
func (s *Server)postIlluminant(c *gin.Context) {
	cfg := s.Config.Illuminant
	if m := c.Query("method"); m != "" {
		cfg.Method = m
	}
	est, err := cfg.NewEstimator()
	if err != nil {
		abortWith(c, err)
		return
	}

	img, err := uploadedImage(c)
	if err != nil {
		abortWith(c, err)
		return
	}

	e, err := est.Estimate(img)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, illuminantResponse{
		Method:         e.Method,
		RGB:            e.Color,
		Norm:           e.Norm,
		Intensity:      e.Intensity,
		Hex:            e.Hex(),
		SpecularPixels: e.SpecularPixels,
	})
}
