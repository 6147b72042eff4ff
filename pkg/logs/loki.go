package logs

import (
	"log/slog"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/Alijeyrad/sapan_backend/config"
)

// newLokiHandler pushes records to Loki in batches. The returned stop func
// flushes pending batches.
func newLokiHandler(cfg *config.Config, level slog.Level) (slog.Handler, func(), error) {
	lc := cfg.Logging.Output.Loki

	endpoint := strings.TrimRight(lc.Endpoint, "/")
	if !strings.HasSuffix(endpoint, "/loki/api/v1/push") {
		endpoint += "/loki/api/v1/push"
	}

	clientCfg, err := loki.NewDefaultConfig(endpoint)
	if err != nil {
		return nil, nil, err
	}
	if lc.Username != "" {
		clientCfg.Client.BasicAuth = &promconfig.BasicAuth{
			Username: lc.Username,
			Password: promconfig.Secret(lc.Password),
		}
	}

	client, err := loki.New(clientCfg)
	if err != nil {
		return nil, nil, err
	}

	h := slogloki.Option{Level: level, Client: client}.NewLokiHandler()
	return h, client.Stop, nil
}
