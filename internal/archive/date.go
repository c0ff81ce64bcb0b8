package archive

import "time"

// searchDateLayout is the IMAP date format: unpadded day, English
// three-letter month, four-digit year.
const searchDateLayout = "2-Jan-2006"

// CutoffDate returns the calendar date maxAgeDays before today, at
// midnight UTC. Messages dated strictly before it are archived.
func CutoffDate(today time.Time, maxAgeDays int) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -maxAgeDays)
}

// FormatSearchDate renders t as an IMAP search date, e.g. "5-Mar-2024".
func FormatSearchDate(t time.Time) string {
	return t.Format(searchDateLayout)
}

// SearchCriteria renders the search key used for cutoff. UNDELETED is
// appended when messages already flagged \Deleted are excluded.
func SearchCriteria(cutoff time.Time, excludeDeleted bool) string {
	criteria := "BEFORE " + FormatSearchDate(cutoff)
	if excludeDeleted {
		criteria += " UNDELETED"
	}
	return criteria
}
