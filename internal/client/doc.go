// Package client ties the cloud session, realtime channel, and bulb
// directory into one host-facing surface.
//
// Login drives everything: a renewed session resolves the realtime
// endpoint, (re)connects the channel with the fresh token, and force
// refreshes the directory. Pairing walks the refreshed directory and
// hands unseen bulbs to the host, cooperatively cancellable between
// iterations.
//
// The client also fans observed attribute changes out to the optional
// history trail and InfluxDB telemetry before forwarding them to the
// host's observer.
package client
