package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/config"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/graphics"
	"github.com/mohammed-shakir/airspace-overlay/internal/wmsgrid"
	"github.com/mohammed-shakir/airspace-overlay/internal/zones"
)

func (c *cli) convertCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "convert LNG LAT",
		Short: "Convert a point between WGS-84 and GCJ-02",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			switch strings.ToLower(from) {
			case "wgs84":
				return c.printJSON(coord.Wgs84ToGcj02(v[0], v[1]))
			case "gcj02":
				return c.printJSON(coord.Gcj02ToWgs84(v[0], v[1]))
			default:
				return fmt.Errorf("--from must be wgs84 or gcj02, got %q", from)
			}
		},
	}
	cmd.Flags().StringVar(&from, "from", "wgs84", "Source datum: wgs84|gcj02")
	return cmd
}

func (c *cli) distanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance LAT1 LON1 LAT2 LON2",
		Short: "Great-circle distance in meters",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			return c.printJSON(map[string]float64{"meters": coord.HaversineMeters(v[0], v[1], v[2], v[3])})
		},
	}
}

func (c *cli) tilesCmd() *cobra.Command {
	var (
		lng, lat float64
		zoom     int
		ne, sw   string
		opts     wmsgrid.Options
	)
	defaults := config.FromEnv().WMS
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Lay out the WMS overlay grid for a GCJ-02 viewport",
		RunE: func(_ *cobra.Command, _ []string) error {
			var region *model.Region
			if ne != "" || sw != "" {
				n, err := parseLngLat(ne)
				if err != nil {
					return fmt.Errorf("--ne: %w", err)
				}
				s, err := parseLngLat(sw)
				if err != nil {
					return fmt.Errorf("--sw: %w", err)
				}
				region = &model.Region{Northeast: n, Southwest: s}
			}
			tiles := wmsgrid.BuildWmsOverlay(model.GeoPoint{Longitude: lng, Latitude: lat}, zoom, region, opts)
			c.log.Debug("tiles built", "count", len(tiles), "zoom", zoom)
			return c.printJSON(map[string][]model.WmsTile{"tiles": tiles})
		},
	}
	cmd.Flags().Float64Var(&lng, "lng", 0, "Center longitude (GCJ-02)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Center latitude (GCJ-02)")
	cmd.Flags().IntVar(&zoom, "zoom", 10, "Map zoom level")
	cmd.Flags().StringVar(&ne, "ne", "", "Viewport northeast corner as lng,lat")
	cmd.Flags().StringVar(&sw, "sw", "", "Viewport southwest corner as lng,lat")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", defaults.BaseURL, "WMS endpoint")
	cmd.Flags().StringVar(&opts.Token, "token", defaults.Token, "WMS token")
	cmd.Flags().StringSliceVar(&opts.Layers, "layers", defaults.Layers, "WMS layers (default: all province layers)")
	cmd.Flags().Float64Var(&opts.Alpha, "alpha", defaults.Alpha, "Overlay opacity")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func (c *cli) readAreas() ([]area.Area, error) {
	body, err := io.ReadAll(c.in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.New("expected an area payload on stdin")
	}
	areas, err := area.ParseList(body)
	if err != nil {
		return nil, fmt.Errorf("parse areas: %w", err)
	}
	c.log.Debug("areas parsed", "count", len(areas))
	return areas, nil
}

func (c *cli) renderCmd() *cobra.Command {
	var asGeoJSON bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an area payload read from stdin into GCJ-02 shapes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			areas, err := c.readAreas()
			if err != nil {
				return err
			}
			shapes := graphics.BuildAreaGraphics(areas)
			if asGeoJSON {
				return c.printJSON(graphics.ToFeatureCollection(shapes))
			}
			return c.printJSON(map[string][]model.RenderShape{"shapes": shapes})
		},
	}
	cmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "Emit a GeoJSON FeatureCollection")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	var lng, lat float64
	var wgs bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Classify a point against an area payload read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			areas, err := c.readAreas()
			if err != nil {
				return err
			}
			p := model.GeoPoint{Longitude: lng, Latitude: lat}
			if !wgs {
				p = coord.Gcj02PointToWgs84(p)
			}
			return c.printJSON(zones.StatusAt(areas, p))
		},
	}
	cmd.Flags().Float64Var(&lng, "lng", 0, "Point longitude (GCJ-02 unless --wgs84)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Point latitude (GCJ-02 unless --wgs84)")
	cmd.Flags().BoolVar(&wgs, "wgs84", false, "Point is already WGS-84")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}
