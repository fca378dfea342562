package opay

// successCode is the business code the gateway returns on success.
const successCode = "00000"

type envelope[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type amount struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type userInfo struct {
	UserEmail  string `json:"userEmail,omitempty"`
	UserID     string `json:"userId,omitempty"`
	UserMobile string `json:"userMobile,omitempty"`
	UserName   string `json:"userName,omitempty"`
}

type product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type cashierCreateRequest struct {
	Country     string   `json:"country"`
	Reference   string   `json:"reference"`
	Amount      amount   `json:"amount"`
	ReturnURL   string   `json:"returnUrl"`
	CallbackURL string   `json:"callbackUrl"`
	CancelURL   string   `json:"cancelUrl"`
	ExpireAt    int      `json:"expireAt"`
	UserInfo    userInfo `json:"userInfo"`
	Product     product  `json:"product"`
}

type cashierCreateData struct {
	Reference  string `json:"reference"`
	OrderNo    string `json:"orderNo"`
	CashierURL string `json:"cashierUrl"`
	Status     string `json:"status"`
	Amount     amount `json:"amount"`
}

type cashierStatusRequest struct {
	Country   string `json:"country"`
	Reference string `json:"reference"`
}

type cashierStatusData struct {
	Reference  string `json:"reference"`
	OrderNo    string `json:"orderNo"`
	Status     string `json:"status"`
	Amount     amount `json:"amount"`
	CreateTime int64  `json:"createTime"`
}
