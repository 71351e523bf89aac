package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
	"github.com/nhle/venuebook/internal/sweep"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
}

func writeResources(w io.Writer, resources []model.Resource) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\tNAME\tLOCATION\tOWNER\tRATE\tHOURS\n")
	for _, res := range resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			res.ID, res.Name, res.Location, res.OwnerID, res.HourlyRate, openingHours(res))
	}
	tw.Flush()
}

func openingHours(res model.Resource) string {
	if res.OpeningTime == "" && res.ClosingTime == "" {
		return "always"
	}
	open, closing := res.OpeningTime, res.ClosingTime
	if open == "" {
		open = "00:00"
	}
	if closing == "" {
		closing = "24:00"
	}
	return open + "-" + closing
}

func writeReservations(w io.Writer, rs []model.Reservation) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\tRESOURCE\tREQUESTER\tSTART\tEND\tCOST\tSTATUS\n")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.ID, r.ResourceID, r.RequesterID,
			r.Interval.Start.UTC().Format(timeLayout),
			r.Interval.End.UTC().Format(timeLayout),
			r.Cost, r.Status)
	}
	tw.Flush()
}

func writeSlots(w io.Writer, slots []model.Interval) {
	tw := newTable(w)
	fmt.Fprintf(tw, "START\tEND\tHOURS\n")
	for _, iv := range slots {
		fmt.Fprintf(tw, "%s\t%s\t%g\n",
			iv.Start.UTC().Format(timeLayout), iv.End.UTC().Format(timeLayout), iv.Hours())
	}
	tw.Flush()
}

func writeReservation(w io.Writer, r model.Reservation) {
	tw := newTable(w)
	fmt.Fprintf(tw, "id:\t%s\n", r.ID)
	fmt.Fprintf(tw, "resource:\t%s\n", r.ResourceID)
	fmt.Fprintf(tw, "requester:\t%s\n", r.RequesterID)
	fmt.Fprintf(tw, "start:\t%s\n", r.Interval.Start.UTC().Format(time.RFC3339))
	fmt.Fprintf(tw, "end:\t%s\n", r.Interval.End.UTC().Format(time.RFC3339))
	fmt.Fprintf(tw, "hours:\t%g\n", r.Interval.Hours())
	fmt.Fprintf(tw, "cost:\t%.2f\n", r.Cost)
	fmt.Fprintf(tw, "status:\t%s\n", r.Status)
	tw.Flush()
}

func writeNotifications(w io.Writer, ns []model.Notification) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\tWHEN\tFROM\tTYPE\tTITLE\tREAD\n")
	for _, n := range ns {
		read := ""
		if n.Read {
			read = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.CreatedAt.UTC().Format(timeLayout), n.SenderID, n.Type, n.Title, read)
	}
	tw.Flush()
	for _, n := range ns {
		if !n.Read {
			fmt.Fprintf(w, "\n%s: %s\n", n.ID, n.Message)
		}
	}
}

func writeSweep(w io.Writer, result sweep.ResultMsg) {
	fmt.Fprintf(w, "%s completed %d reservation(s)\n",
		time.Now().UTC().Format(timeLayout), len(result.Completed))
	for _, r := range result.Completed {
		fmt.Fprintf(w, "  %s %s %s\n", r.ID, r.ResourceID, r.Interval)
	}
	if result.Error != nil {
		fmt.Fprintf(w, "  error: %v\n", result.Error)
	}
}

func writeStats(w io.Writer, st store.Stats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "resources:\t%d\n", st.Resources)
	fmt.Fprintf(tw, "reservations:\t%d\n", st.Reservations)

	statuses := make([]string, 0, len(st.ReservationsByState))
	for status := range st.ReservationsByState {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(tw, "  %s:\t%d\n", status, st.ReservationsByState[model.ReservationStatus(status)])
	}

	fmt.Fprintf(tw, "notifications:\t%d\n", st.Notifications)
	fmt.Fprintf(tw, "unread:\t%d\n", st.UnreadNotifications)
	tw.Flush()
}
