package signal

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "devtogether_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "devtogether_ws_rooms",
			Help: "Current number of active rooms.",
		},
	)
	wsFramesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devtogether_ws_frames_delivered_total",
			Help: "Total websocket frames written to clients.",
		},
	)
	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_ws_events_total",
			Help: "Inbound protocol events by type.",
		},
		[]string{"event"},
	)
	executions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_executions_total",
			Help: "compileCode dispatches by admission outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsFramesDelivered, wsEvents, executions)
}

func incConnections() { wsConnections.Inc() }
func decConnections() { wsConnections.Dec() }

func setRooms(count int) { wsRooms.Set(float64(count)) }

func addDelivered(count int) { wsFramesDelivered.Add(float64(count)) }

func incEvent(event string) { wsEvents.WithLabelValues(event).Inc() }

func incExecution(started bool) {
	outcome := "rejected"
	if started {
		outcome = "dispatched"
	}
	executions.WithLabelValues(outcome).Inc()
}
