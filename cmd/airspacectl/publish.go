package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/config"
	"github.com/mohammed-shakir/airspace-overlay/internal/invalidation"
)

func newSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Version = sarama.V2_5_0_0
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("producer create: %w", err)
	}
	return p, nil
}

func (c *cli) publishCmd() *cobra.Command {
	var (
		brokers, topic string
		ev             invalidation.Event
		bbox, srid     string
		geometry       string
	)
	defaults := config.FromEnv().Invalidation
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a zone change event to the invalidation topic",
		Long:  "publish sends one zone change event so running servers drop the cached zones overlapping --bbox (x1,y1,x2,y2) or --geometry (GeoJSON Polygon/MultiPolygon).",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ev.Version = 1
			ev.TS = time.Now().UTC()
			if bbox != "" {
				b, err := parseBBox(bbox, srid)
				if err != nil {
					return err
				}
				ev.BBox = &b
			}
			if geometry != "" {
				ev.Geometry = json.RawMessage(geometry)
			}
			ev.Source = "airspacectl"
			if err := ev.Validate(); err != nil {
				return fmt.Errorf("invalid event: %w", err)
			}
			body, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("encode event: %w", err)
			}

			prod, err := c.producer(splitBrokers(brokers))
			if err != nil {
				return err
			}
			defer func() { _ = prod.Close() }()

			msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(body)}
			if ev.ZoneID != "" {
				msg.Key = sarama.StringEncoder(ev.ZoneID)
			}
			part, off, err := prod.SendMessage(msg)
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			c.log.Info("zone event published", "topic", topic, "partition", part, "offset", off)
			return c.printJSON(map[string]any{"topic": topic, "partition": part, "offset": off})
		},
	}
	cmd.Flags().StringVar(&brokers, "brokers", defaults.Brokers, "Kafka brokers, comma separated")
	cmd.Flags().StringVar(&topic, "topic", defaults.Topic, "Invalidation topic")
	cmd.Flags().StringVar(&ev.Op, "op", "update", "Change type: insert|update|delete")
	cmd.Flags().StringVar(&ev.ZoneID, "zone-id", "", "Changed zone id (used for revision ordering)")
	cmd.Flags().Uint64Var(&ev.Revision, "revision", 0, "Zone revision")
	cmd.Flags().StringVar(&bbox, "bbox", "", "Changed area as x1,y1,x2,y2")
	cmd.Flags().StringVar(&geometry, "geometry", "", "Changed area as GeoJSON Polygon/MultiPolygon")
	cmd.Flags().StringVar(&srid, "srid", invalidation.SRIDWGS84, "Datum of --bbox: EPSG:4326|GCJ-02")
	return cmd
}

func parseBBox(s, srid string) (invalidation.BBox, error) {
	v, err := parseFloats(strings.Split(s, ","))
	if err != nil {
		return invalidation.BBox{}, fmt.Errorf("--bbox: %w", err)
	}
	if len(v) != 4 {
		return invalidation.BBox{}, fmt.Errorf("--bbox: expected x1,y1,x2,y2 got %q", s)
	}
	return invalidation.BBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3], SRID: srid}, nil
}

func splitBrokers(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
