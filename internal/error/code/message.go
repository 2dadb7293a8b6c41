package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",
	ErrPayloadTooLarge: "请求体过大",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",

	// 设备相关错误码
	ErrDeviceNotFound:     "设备不存在",
	ErrDeviceAlreadyExist: "设备已存在",
	ErrDeviceOffline:      "设备当前离线",

	// 会员相关错误码
	ErrMemberNotFound:     "会员不存在",
	ErrMemberAlreadyExist: "会员已存在",
	ErrStaffNotFound:      "员工不存在",
	ErrBranchNotFound:     "分店不存在",

	// 会籍与权益相关错误码
	ErrMembershipNotFound:  "会籍不存在",
	ErrMembershipNotActive: "会籍未激活",
	ErrPlanNotFound:        "会籍套餐不存在",
	ErrBenefitNotInPlan:    "套餐不包含该权益",
	ErrBenefitExhausted:    "权益额度已用完",

	// 预约相关错误码
	ErrSlotNotFound:          "时段不存在",
	ErrSlotFull:              "时段已约满",
	ErrBookingNotFound:       "预约不存在",
	ErrBookingNotCancellable: "预约不可取消",

	// 支付相关错误码
	ErrGatewayInvalid:      "不支持的支付网关",
	ErrSignatureInvalid:    "支付签名验证失败",
	ErrInvoiceNotFound:     "账单不存在",
	ErrTransactionNotFound: "交易不存在",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrPayloadTooLarge: StatusPayloadTooLarge,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 设备相关错误码
	ErrDeviceNotFound:     StatusNotFound,
	ErrDeviceAlreadyExist: StatusBadRequest,
	ErrDeviceOffline:      StatusBadRequest,

	// 会员相关错误码
	ErrMemberNotFound:     StatusNotFound,
	ErrMemberAlreadyExist: StatusBadRequest,
	ErrStaffNotFound:      StatusNotFound,
	ErrBranchNotFound:     StatusNotFound,

	// 会籍与权益相关错误码
	ErrMembershipNotFound:  StatusNotFound,
	ErrMembershipNotActive: StatusBadRequest,
	ErrPlanNotFound:        StatusNotFound,
	ErrBenefitNotInPlan:    StatusBadRequest,
	ErrBenefitExhausted:    StatusBadRequest,

	// 预约相关错误码
	ErrSlotNotFound:          StatusNotFound,
	ErrSlotFull:              StatusBadRequest,
	ErrBookingNotFound:       StatusNotFound,
	ErrBookingNotCancellable: StatusBadRequest,

	// 支付相关错误码
	ErrGatewayInvalid:      StatusBadRequest,
	ErrSignatureInvalid:    StatusUnauthorized,
	ErrInvoiceNotFound:     StatusNotFound,
	ErrTransactionNotFound: StatusNotFound,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
