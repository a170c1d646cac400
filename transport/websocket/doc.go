// Package websocket streams simulation runs to browser or CLI watchers.
//
// A central Hub owns every connection. Clients subscribe to a named channel
// with GET /ws?channel=<name>; whenever a run is posted with the same
// channel the hub pushes one JSON text frame to each watcher:
//
//	{"channel":"demo","event":"run","run":{"mode":"multi","output":"A B\n5 4\n7",...}}
//
// Clients are not expected to send anything; incoming frames are read and
// discarded so that ping/pong keeps working. A watcher whose queue fills up
// is dropped.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("channel"))
//	})
//
//	hub.BroadcastRun("demo", result)
package websocket
