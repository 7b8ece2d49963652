package models

// DefaultSiteName is shown in the page header and titles.
const DefaultSiteName = "YelpCamp"
