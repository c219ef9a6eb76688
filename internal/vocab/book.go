package vocab

// Book is a published word list. ListCode identifies it on the backend.
type Book struct {
	ID         int64  `json:"id"`
	ListCode   string `json:"listCode"`
	Name       string `json:"name"`
	WordCount  int    `json:"wordCount"`
	Learned    int    `json:"learned"`
	InReview   int    `json:"inReview"`
	CoverColor string `json:"coverColor,omitempty"`
}

// Category groups books in the browse hierarchy (e.g. exam, grade, theme).
type Category struct {
	Name     string     `json:"name"`
	Books    []Book     `json:"books,omitempty"`
	Children []Category `json:"children,omitempty"`
}

// BookProgress is the backend-computed due state for the active book.
type BookProgress struct {
	ListCode  string `json:"listCode"`
	DueNew    int    `json:"dueNew"`
	DueReview int    `json:"dueReview"`
	Total     int    `json:"total"`
	Learned   int    `json:"learned"`
}

// Plan is the user's configured daily workload for the active book.
type Plan struct {
	DailyNew    int `json:"dailyNew"`
	DailyReview int `json:"dailyReview"`
}
