package i18n

var messagesEN = map[string]string{
	"invalid_type":    "Invalid input type: {expected} was expected",
	"invalid_enum":    "Invalid input type: value must be one of: {values}",
	"validator_error": "Validator failed",
	"parse_error":     "Input could not be decoded: {detail}",
	"required":        "Value is required",

	"string.non_empty": "String must not be empty",
	"string.min":       "String must be at least {min} characters long",
	"string.max":       "String must be at most {max} characters long",
	"string.length":    "String must be exactly {length} characters long",
	"string.regex":     "String must match regex pattern",
	"string.email":     "String must be a valid email address",
	"string.url":       "String must be a valid URL",
	"string.uuid":      "String must be a valid UUID",

	"number.min":          "Number must be at least {min}",
	"number.max":          "Number must be at most {max}",
	"number.integer":      "Number must be an integer",
	"number.positive":     "Number must be a positive number",
	"number.negative":     "Number must be a negative number",
	"number.safe_integer": "Number must be in the range of a safe integer",
	"number.step":         "Number must be a multiple of {step}",

	"int.min":      "Integer must be at least {min}",
	"int.max":      "Integer must be at most {max}",
	"int.positive": "Integer must be a positive number",
	"int.negative": "Integer must be a negative number",

	"bigint.min":      "Bigint must be at least {min}",
	"bigint.max":      "Bigint must be at most {max}",
	"bigint.positive": "Bigint must be a positive number",
	"bigint.negative": "Bigint must be a negative number",

	"date.min": "Date must be on or after {date}",
	"date.max": "Date must be on or before {date}",

	"file.min":  "File must be at least {bytes} bytes",
	"file.max":  "File must be at most {bytes} bytes",
	"file.mime": "File type must be one of {types}",

	"array.non_empty": "Array must not be empty",
	"array.min":       "Array must be at least {min} items long",
	"array.max":       "Array must be at most {max} items long",
	"array.unique":    "Array items must be unique by {key}",
}

var messagesJA = map[string]string{
	"invalid_type":    "型が不正です: {expected} が必要です",
	"invalid_enum":    "型が不正です: {values} のいずれかが必要です",
	"validator_error": "検証に失敗しました",
	"parse_error":     "入力を解析できません: {detail}",
	"required":        "値が必要です",

	"string.non_empty": "文字列を空にすることはできません",
	"string.min":       "{min} 文字以上で入力してください",
	"string.max":       "{max} 文字以下で入力してください",
	"string.length":    "{length} 文字で入力してください",
	"string.regex":     "文字列が正規表現に一致しません",
	"string.email":     "有効なメールアドレスではありません",
	"string.url":       "有効な URL ではありません",
	"string.uuid":      "有効な UUID ではありません",

	"number.min":          "{min} 以上の数値が必要です",
	"number.max":          "{max} 以下の数値が必要です",
	"number.integer":      "整数が必要です",
	"number.positive":     "正の数が必要です",
	"number.negative":     "負の数が必要です",
	"number.safe_integer": "安全な整数の範囲外です",
	"number.step":         "{step} の倍数が必要です",

	"int.min":      "{min} 以上の整数が必要です",
	"int.max":      "{max} 以下の整数が必要です",
	"int.positive": "正の整数が必要です",
	"int.negative": "負の整数が必要です",

	"bigint.min":      "{min} 以上の値が必要です",
	"bigint.max":      "{max} 以下の値が必要です",
	"bigint.positive": "正の値が必要です",
	"bigint.negative": "負の値が必要です",

	"date.min": "{date} 以降の日付が必要です",
	"date.max": "{date} 以前の日付が必要です",

	"file.min":  "ファイルは {bytes} バイト以上必要です",
	"file.max":  "ファイルは {bytes} バイト以下にしてください",
	"file.mime": "ファイル形式は {types} のいずれかである必要があります",

	"array.non_empty": "配列を空にすることはできません",
	"array.min":       "配列の要素は {min} 個以上必要です",
	"array.max":       "配列の要素は {max} 個以下にしてください",
	"array.unique":    "配列の要素は {key} で一意である必要があります",
}
