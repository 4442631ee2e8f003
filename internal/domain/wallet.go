package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DepositRequest 表示创建充值请求
type DepositRequest struct {
	Amount float64 `json:"amount"`
}

// DepositResponse 表示充值请求的结果
type DepositResponse struct {
	DepositID string  `json:"depositId"`
	Code      string  `json:"code"`
	Amount    float64 `json:"amount"`
	TonLink   string  `json:"tonLink"`
	QRCode    string  `json:"qrCode"`
	ExpiresAt string  `json:"expiresAt,omitempty"`
}

// WithdrawalRequest 表示提现请求
type WithdrawalRequest struct {
	Amount           float64 `json:"amount"`
	RecipientAddress string  `json:"recipientAddress"`
}

// WithdrawalResponse 表示提现请求的结果
type WithdrawalResponse struct {
	WithdrawalID string  `json:"withdrawalId"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
}

// Profile 表示用户余额信息
type Profile struct {
	TonAddress      string  `json:"tonAddress"`
	Balance         float64 `json:"balance"`
	ReservedBalance float64 `json:"reservedBalance"`
	Network         string  `json:"network"`
	Username        string  `json:"username,omitempty"`
	TelegramID      string  `json:"telegramId,omitempty"`
}

// Transaction 表示一条资金流水
type Transaction struct {
	ID        string  `json:"_id"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	ItemID    string  `json:"itemId,omitempty"`
	TxHash    string  `json:"txHash,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// TransactionList 表示流水列表响应
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// FieldError 表示字段级校验错误，在发起网络请求之前返回
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// 钱包字段名
const (
	FieldAmount           = "amount"
	FieldRecipientAddress = "recipientAddress"
)

// ParseAmount 解析金额输入，接受逗号作为小数点
func ParseAmount(raw string) (float64, error) {
	normalized := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, &FieldError{Field: FieldAmount, Message: "enter a valid amount"}
	}
	return v, nil
}

// ValidateAmount 金额必须为有限正数
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &FieldError{Field: FieldAmount, Message: "enter a valid amount"}
	}
	return nil
}

// ValidateWithdrawal 校验提现请求，地址会被去除首尾空白
func ValidateWithdrawal(req *WithdrawalRequest) error {
	if err := ValidateAmount(req.Amount); err != nil {
		return err
	}
	req.RecipientAddress = strings.TrimSpace(req.RecipientAddress)
	if req.RecipientAddress == "" {
		return &FieldError{Field: FieldRecipientAddress, Message: "recipient TON address is required"}
	}
	return nil
}
