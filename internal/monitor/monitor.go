package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor exposes prometheus metrics for the session server. It satisfies
// core.Monitor. Each Monitor carries its own registry so tests can build as
// many instances as they like.
type Monitor struct {
	registry *prometheus.Registry

	connectedClients prometheus.Gauge
	liveRooms        prometheus.Gauge
	commandsTotal    prometheus.Counter
	patchesTotal     prometheus.Counter
	uploadsTotal     prometheus.Counter
}

// New builds a Monitor with all collectors registered under namespace.
func New(namespace string) *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open WebSocket connections",
		}),
		liveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_rooms",
			Help:      "Number of rooms held in the registry",
		}),
		commandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of client commands processed",
		}),
		patchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_total",
			Help:      "Total number of state patches broadcast",
		}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of stored file uploads",
		}),
	}

	m.registry.MustRegister(
		m.connectedClients,
		m.liveRooms,
		m.commandsTotal,
		m.patchesTotal,
		m.uploadsTotal,
	)

	return m
}

// Handler returns the /metrics endpoint for this monitor's registry.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) ClientConnected() {
	m.connectedClients.Inc()
}

func (m *Monitor) ClientDisconnected() {
	m.connectedClients.Dec()
}

func (m *Monitor) SetLiveRooms(n int) {
	m.liveRooms.Set(float64(n))
}

func (m *Monitor) CommandHandled() {
	m.commandsTotal.Inc()
}

func (m *Monitor) PatchBroadcast() {
	m.patchesTotal.Inc()
}

// UploadStored counts one stored file upload.
func (m *Monitor) UploadStored() {
	m.uploadsTotal.Inc()
}
