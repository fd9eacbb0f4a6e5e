// Package influxdb journals the switcher's canonical state changes to
// InfluxDB.
//
// Every applied scalar change becomes one point in the switcher_changes
// measurement, tagged with site, channel, notification kind and canonical
// path. The field depends on the value: "value" for numbers, "state" for
// booleans, "text" for strings and "removed" for deletions.
//
// Usage:
//
//	journal, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer journal.Close()
//	sess := session.New(conn, owner, session.WithJournal(journal))
package influxdb
