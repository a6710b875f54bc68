package game

import (
	"math/rand"
	"strings"
	"unicode/utf8"
)

const (
	// CodeAlphabet 去掉易混淆字符（0/O/1/I）的字母表，房间号与逃脱密码共用
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// EscapeCodeLen 逃脱密码长度
	EscapeCodeLen = 10
	// FragmentLen 每块碎片的字符数
	FragmentLen = EscapeCodeLen / StageCount
	// maxSubmitLen 提交密码时截断长度
	maxSubmitLen = 20
)

// HintOrders 按关卡顺序分配给碎片的提示序号，刻意不连续，
// 使拼装顺序与关卡顺序不一致
var HintOrders = [StageCount]int{1, 3, 2, 5, 4}

// CodeFragment 逃脱密码的一段及其拼装提示序号
type CodeFragment struct {
	Text string
	Hint int
}

// Secret 房间的逃脱密码与按关卡分配的碎片
type Secret struct {
	Code      string
	Fragments [StageCount]CodeFragment
}

// SeedFor 由房间号派生随机种子：字节和 * 1337
func SeedFor(roomCode string) int64 {
	var sum int64
	for i := 0; i < len(roomCode); i++ {
		sum += int64(roomCode[i])
	}
	return sum * 1337
}

// NewSecret 用确定性随机序列生成密码与碎片；同一种子结果相同
func NewSecret(seed int64) Secret {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	for i := 0; i < EscapeCodeLen; i++ {
		b.WriteByte(CodeAlphabet[rng.Intn(len(CodeAlphabet))])
	}
	code := b.String()

	frags := make([]string, 0, StageCount)
	for i := 0; i < EscapeCodeLen; i += FragmentLen {
		frags = append(frags, code[i:i+FragmentLen])
	}
	rng.Shuffle(len(frags), func(i, j int) { frags[i], frags[j] = frags[j], frags[i] })

	s := Secret{Code: code}
	for i, f := range frags {
		s.Fragments[i] = CodeFragment{Text: f, Hint: HintOrders[i]}
	}
	return s
}

// NormalizeCode 去除首尾空白、转大写并截断到 20 个字符
func NormalizeCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if utf8.RuneCountInString(code) > maxSubmitLen {
		code = string([]rune(code)[:maxSubmitLen])
	}
	return code
}
