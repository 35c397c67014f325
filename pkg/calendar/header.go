package calendar

import (
	"fmt"
	"time"
)

var (
	monthNames = [...]string{
		"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
	}
	monthShortNames = [...]string{
		"Jan", "Fév", "Mar", "Avr", "Mai", "Juin",
		"Juil", "Aoû", "Sep", "Oct", "Nov", "Déc",
	}
	weekdayNames = [...]string{
		"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi",
	}
	weekdayShortNames = [...]string{
		"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam",
	}
)

// MonthName returns the French month name.
func MonthName(m time.Month) string { return monthNames[m-1] }

// MonthShortName returns the abbreviated French month name.
func MonthShortName(m time.Month) string { return monthShortNames[m-1] }

// WeekdayName returns the French weekday name.
func WeekdayName(d time.Weekday) string { return weekdayNames[d] }

// WeekdayShortName returns the abbreviated French weekday name.
func WeekdayShortName(d time.Weekday) string { return weekdayShortNames[d] }

// Header renders the title shown above the grid:
//
//	month: "Mars 2024"
//	week:  "10 - 16 Mars 2024", "25 Fév - 2 Mar 2024", "29 Déc 2024 - 4 Jan 2025"
//	day:   "Vendredi 15 Mars 2024"
func Header(mode Mode, anchor time.Time) string {
	switch mode {
	case ModeWeek:
		return weekHeader(StartOfWeek(anchor))
	case ModeDay:
		return fmt.Sprintf("%s %d %s %d", WeekdayName(anchor.Weekday()), anchor.Day(), MonthName(anchor.Month()), anchor.Year())
	default:
		return fmt.Sprintf("%s %d", MonthName(anchor.Month()), anchor.Year())
	}
}

func weekHeader(start time.Time) string {
	end := AddDays(start, 6)
	switch {
	case start.Year() != end.Year():
		return fmt.Sprintf("%d %s %d - %d %s %d",
			start.Day(), MonthShortName(start.Month()), start.Year(),
			end.Day(), MonthShortName(end.Month()), end.Year())
	case start.Month() != end.Month():
		return fmt.Sprintf("%d %s - %d %s %d",
			start.Day(), MonthShortName(start.Month()),
			end.Day(), MonthShortName(end.Month()), end.Year())
	default:
		return fmt.Sprintf("%d - %d %s %d", start.Day(), end.Day(), MonthName(start.Month()), start.Year())
	}
}
