package model

// Labels holds every user-visible string and layout the pipeline
// substitutes or renders. Zero fields are filled by WithDefaults.
type Labels struct {
	Untitled        string `koanf:"untitled" yaml:"untitled" json:"untitled"`
	DateUnspecified string `koanf:"date_unspecified" yaml:"date_unspecified" json:"date_unspecified"`
	AllDay          string `koanf:"all_day" yaml:"all_day" json:"all_day"`

	// DateLayout / TimeLayout are Go time layouts.
	DateLayout string `koanf:"date_layout" yaml:"date_layout" json:"date_layout"`
	TimeLayout string `koanf:"time_layout" yaml:"time_layout" json:"time_layout"`

	TitlePrefix      string `koanf:"title_prefix" yaml:"title_prefix" json:"title_prefix"`
	GeneratedPrefix  string `koanf:"generated_prefix" yaml:"generated_prefix" json:"generated_prefix"`
	GeneratedLayout  string `koanf:"generated_layout" yaml:"generated_layout" json:"generated_layout"`
	SummaryHeader    string `koanf:"summary_header" yaml:"summary_header" json:"summary_header"`
	TotalPrefix      string `koanf:"total_prefix" yaml:"total_prefix" json:"total_prefix"`
	RecurrencePrefix string `koanf:"recurrence_prefix" yaml:"recurrence_prefix" json:"recurrence_prefix"`

	ColumnDate     string `koanf:"column_date" yaml:"column_date" json:"column_date"`
	ColumnTime     string `koanf:"column_time" yaml:"column_time" json:"column_time"`
	ColumnEvent    string `koanf:"column_event" yaml:"column_event" json:"column_event"`
	ColumnLocation string `koanf:"column_location" yaml:"column_location" json:"column_location"`
}

// DefaultLabels returns the English label set.
func DefaultLabels() Labels {
	return Labels{
		Untitled:         "Untitled",
		DateUnspecified:  "Date unspecified",
		AllDay:           "All day",
		DateLayout:       "02/01/2006",
		TimeLayout:       "15:04",
		TitlePrefix:      "CALENDAR - ",
		GeneratedPrefix:  "Generated on: ",
		GeneratedLayout:  "02/01/2006 15:04",
		SummaryHeader:    "EVENT SUMMARY",
		TotalPrefix:      "Total events: ",
		RecurrencePrefix: "Repeats: ",
		ColumnDate:       "Date",
		ColumnTime:       "Time",
		ColumnEvent:      "Event",
		ColumnLocation:   "Location",
	}
}

// WithDefaults returns a copy of l with every empty field replaced by the
// corresponding default.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.Untitled, d.Untitled)
	fill(&l.DateUnspecified, d.DateUnspecified)
	fill(&l.AllDay, d.AllDay)
	fill(&l.DateLayout, d.DateLayout)
	fill(&l.TimeLayout, d.TimeLayout)
	fill(&l.TitlePrefix, d.TitlePrefix)
	fill(&l.GeneratedPrefix, d.GeneratedPrefix)
	fill(&l.GeneratedLayout, d.GeneratedLayout)
	fill(&l.SummaryHeader, d.SummaryHeader)
	fill(&l.TotalPrefix, d.TotalPrefix)
	fill(&l.RecurrencePrefix, d.RecurrencePrefix)
	fill(&l.ColumnDate, d.ColumnDate)
	fill(&l.ColumnTime, d.ColumnTime)
	fill(&l.ColumnEvent, d.ColumnEvent)
	fill(&l.ColumnLocation, d.ColumnLocation)
	return l
}
