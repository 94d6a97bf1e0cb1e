package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Email     string `json:"email"      validate:"required,email,max=120"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

// --- Users ---

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Email     string `json:"email"      validate:"required,email,max=120"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin student"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type listUsersResponse struct {
	Data []*userResponse `json:"data"`
}

// --- Books ---

type bookRequest struct {
	Title           string `json:"title"            validate:"required,max=200"`
	Author          string `json:"author"           validate:"required,max=200"`
	ISBN            string `json:"isbn"             validate:"max=20"`
	Publisher       string `json:"publisher"        validate:"max=200"`
	PublicationYear *int   `json:"publication_year" validate:"omitempty,gte=0"`
	Category        string `json:"category"         validate:"max=100"`
	Description     string `json:"description"`
	TotalCopies     *int   `json:"total_copies"     validate:"required,gte=0"`
}

type availabilityRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

type bookLinks struct {
	Self  string `json:"self"`
	Loans string `json:"loans"`
}

type bookResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	Category        string    `json:"category,omitempty"`
	Description     string    `json:"description,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	Links           bookLinks `json:"_links"`
}

type listBooksResponse struct {
	Data []bookResponse `json:"data"`
}

type categoriesResponse struct {
	Data []string `json:"data"`
}

// --- Loans ---

type adminLoanRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	BookID    int64 `json:"book_id"    validate:"required,gt=0"`
}

type loanLinks struct {
	Self   string `json:"self"`
	Return string `json:"return"`
	Book   string `json:"book"`
}

type loanResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Borrower      string     `json:"borrower"`
	BookID        int64      `json:"book_id"`
	BookTitle     string     `json:"book_title"`
	LoanDate      time.Time  `json:"loan_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Status        string     `json:"status"`
	IsOverdue     bool       `json:"is_overdue"`
	DaysRemaining int        `json:"days_remaining"`
	Links         loanLinks  `json:"_links"`
}

type listLoansResponse struct {
	Data []loanResponse `json:"data"`
}

type myLoansResponse struct {
	Active   []loanResponse `json:"active"`
	Returned []loanResponse `json:"returned"`
}

// --- Dashboard / audit ---

type actionLogResponse struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type listLogsResponse struct {
	Data []actionLogResponse `json:"data"`
}

type adminDashboardResponse struct {
	TotalBooks   int64               `json:"total_books"`
	TotalUsers   int64               `json:"total_users"`
	ActiveLoans  int64               `json:"active_loans"`
	OverdueLoans int64               `json:"overdue_loans"`
	RecentLogs   []actionLogResponse `json:"recent_logs"`
}

type studentDashboardResponse struct {
	ActiveLoans []loanResponse `json:"active_loans"`
	RecentBooks []bookResponse `json:"recent_books"`
}
