package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusPayloadTooLarge - 413: 请求体过大.
	StatusPayloadTooLarge = 413
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrPayloadTooLarge - 413: 请求体过大.
	ErrPayloadTooLarge
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 设备相关错误码 (102xxx).
const (
	// ErrDeviceNotFound - 404: 设备不存在.
	ErrDeviceNotFound int = iota + 102000
	// ErrDeviceAlreadyExist - 400: 设备已存在.
	ErrDeviceAlreadyExist
	// ErrDeviceOffline - 400: 设备离线.
	ErrDeviceOffline
)

// 会员相关错误码 (103xxx).
const (
	// ErrMemberNotFound - 404: 会员不存在.
	ErrMemberNotFound int = iota + 103000
	// ErrMemberAlreadyExist - 400: 会员已存在.
	ErrMemberAlreadyExist
	// ErrStaffNotFound - 404: 员工不存在.
	ErrStaffNotFound
	// ErrBranchNotFound - 404: 分店不存在.
	ErrBranchNotFound
)

// 会籍与权益相关错误码 (104xxx).
const (
	// ErrMembershipNotFound - 404: 会籍不存在.
	ErrMembershipNotFound int = iota + 104000
	// ErrMembershipNotActive - 400: 会籍未激活.
	ErrMembershipNotActive
	// ErrPlanNotFound - 404: 会籍套餐不存在.
	ErrPlanNotFound
	// ErrBenefitNotInPlan - 400: 套餐不包含该权益.
	ErrBenefitNotInPlan
	// ErrBenefitExhausted - 400: 权益额度已用完.
	ErrBenefitExhausted
)

// 预约相关错误码 (105xxx).
const (
	// ErrSlotNotFound - 404: 时段不存在.
	ErrSlotNotFound int = iota + 105000
	// ErrSlotFull - 400: 时段已约满.
	ErrSlotFull
	// ErrBookingNotFound - 404: 预约不存在.
	ErrBookingNotFound
	// ErrBookingNotCancellable - 400: 预约不可取消.
	ErrBookingNotCancellable
)

// 支付相关错误码 (106xxx).
const (
	// ErrGatewayInvalid - 400: 不支持的支付网关.
	ErrGatewayInvalid int = iota + 106000
	// ErrSignatureInvalid - 401: 支付签名验证失败.
	ErrSignatureInvalid
	// ErrInvoiceNotFound - 404: 账单不存在.
	ErrInvoiceNotFound
	// ErrTransactionNotFound - 404: 交易不存在.
	ErrTransactionNotFound
)

// 数据库相关错误码 (107xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 107000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)
