package model

// GatewayKind tags the financing product a variant sells. The resolver
// switches on this instead of the gateway's concrete type.
type GatewayKind string

const (
	GatewaySlice    GatewayKind = "slice"
	GatewayCredit   GatewayKind = "credit"
	GatewayLeasing  GatewayKind = "leasing"
	GatewayClick    GatewayKind = "click"
	GatewayBanklink GatewayKind = "banklink"
)

// Endpoint selects which processor application endpoint a variant submits to.
type Endpoint string

const (
	EndpointSlice           Endpoint = "slice"
	EndpointCredit          Endpoint = "credit"
	EndpointBusinessLeasing Endpoint = "business-leasing"
	EndpointClick           Endpoint = "click"
	EndpointDirectPayment   Endpoint = "direct-payment"
)

// GatewayText is the display copy for one variant in one locale bucket.
type GatewayText struct {
	Title       string
	Description string
	Image       string
	IconAlt     string
}

// GatewayVariant is one configured financing product exposed as a selectable
// payment method. IDs are encoded into callback URLs and must never change
// once live.
type GatewayVariant struct {
	ID               string
	Kind             GatewayKind
	MaturityInMonths int
	Endpoint         Endpoint
	Enabled          bool
	ButtonMaxHeight  int
	// Text is keyed by locale bucket: "et", "en" or "ru".
	Text map[string]GatewayText
}

// TextFor returns the copy for a locale bucket, falling back to English.
func (v GatewayVariant) TextFor(bucket string) GatewayText {
	if t, ok := v.Text[bucket]; ok {
		return t
	}
	return v.Text["en"]
}

const assetBase = "https://cdn.modena.ee/modena/assets"

// DefaultVariants is the catalog of financing products this service ships.
func DefaultVariants() []GatewayVariant {
	return []GatewayVariant{
		{
			ID:               "modena_slice",
			Kind:             GatewaySlice,
			MaturityInMonths: 3,
			Endpoint:         EndpointSlice,
			Text: map[string]GatewayText{
				"en": {
					Title:       "Modena Pay Later",
					Description: "0€ down payment, 0% interest, 0€ extra charge. Simply pay later.",
					Image:       assetBase + "/modena_woocommerce_slice_eng_228d8b3eed.png",
					IconAlt:     "Modena - Installments up to 48 months",
				},
				"ru": {
					Title:       "Modena - 3 платежа",
					Description: "0€ первоначальный взнос, 0% интресс, 0€ дополнительная плата. Просто платите позже.",
					Image:       assetBase + "/modena_woocommerce_slice_rus_4da0fdb806.png",
					IconAlt:     "Modena - Платежа до 3 месяцев",
				},
				"et": {
					Title:       "Maksa 3 osas",
					Description: "0€ sissemakse, 0% intress, 0€ lisatasu. Lihtsalt maksa hiljem.",
					Image:       assetBase + "/modena_woocommerce_slice_alt_2dacff6e81.png",
					IconAlt:     "Maksa 3 osas, 0€ lisatasu",
				},
			},
		},
		{
			ID:               "modena_credit",
			Kind:             GatewayCredit,
			MaturityInMonths: 36,
			Endpoint:         EndpointCredit,
			Text: map[string]GatewayText{
				"en": {
					Title:       "Modena Credit",
					Description: "Pay for your purchase over 6 - 48 months.",
					Image:       assetBase + "/modena_woocommerce_credit_eng.png",
					IconAlt:     "Modena - Installments up to 48 months",
				},
				"ru": {
					Title:       "Modena рассрочка",
					Description: "Оплатите покупку в течение 6 - 48 месяцев.",
					Image:       assetBase + "/modena_woocommerce_credit_rus.png",
					IconAlt:     "Modena - рассрочка до 48 месяцев",
				},
				"et": {
					Title:       "Modena järelmaks",
					Description: "Tasu ostu eest 6 - 48 kuu jooksul.",
					Image:       assetBase + "/modena_woocommerce_credit_est.png",
					IconAlt:     "Modena - Järelmaks kuni 48 kuud",
				},
			},
		},
		{
			ID:               "modena_leasing",
			Kind:             GatewayLeasing,
			MaturityInMonths: 36,
			Endpoint:         EndpointBusinessLeasing,
			Text: map[string]GatewayText{
				"en": {
					Title:       "Modena Leasing",
					Description: "Installment payment option for businesses. Pay for your purchase in parts over 6 - 48 months.",
					Image:       assetBase + "/modena_woocommerce_business_credit_62c8f2fa76.png",
					IconAlt:     "Modena - Leasing up to 48 months",
				},
				"ru": {
					Title:       "Бизнес лизинг",
					Description: "Опция рассрочки для бизнеса. Оплачивайте свою покупку частями в течение 6 - 48 месяцев.",
					Image:       assetBase + "/modena_woocommerce_business_credit_62c8f2fa76.png",
					IconAlt:     "Modena - бизнес лизинг до 48 месяцев",
				},
				"et": {
					Title:       "Modena ärikliendi järelmaks",
					Description: "Ettevõtetele mõeldud järelmaks. Tasu ostu eest osadena 6 - 48 kuu jooksul.",
					Image:       assetBase + "/modena_woocommerce_business_credit_62c8f2fa76.png",
					IconAlt:     "Modena - Järelmaks kuni 48 kuud",
				},
			},
		},
		{
			ID:               "modena_click",
			Kind:             GatewayClick,
			MaturityInMonths: 0,
			Endpoint:         EndpointClick,
			Text: map[string]GatewayText{
				"en": {
					Title:       "Modena Click",
					Description: "Buy now, pay in 30 days. 0% interest, 0€ extra charge.",
					Image:       assetBase + "/modena_woocommerce_click_eng.png",
					IconAlt:     "Modena Click - pay in 30 days",
				},
				"ru": {
					Title:       "Modena Click",
					Description: "Купите сейчас, заплатите через 30 дней. 0% интресс, 0€ дополнительная плата.",
					Image:       assetBase + "/modena_woocommerce_click_rus.png",
					IconAlt:     "Modena Click - оплата через 30 дней",
				},
				"et": {
					Title:       "Modena Click",
					Description: "Osta kohe, maksa 30 päeva pärast. 0% intress, 0€ lisatasu.",
					Image:       assetBase + "/modena_woocommerce_click_est.png",
					IconAlt:     "Modena Click - maksa 30 päeva pärast",
				},
			},
		},
		{
			ID:               "modena_banklinks",
			Kind:             GatewayBanklink,
			MaturityInMonths: 0,
			Endpoint:         EndpointDirectPayment,
			Text: map[string]GatewayText{
				"en": {
					Title:       "Bank & Card Payments",
					Description: "Pay with your bank or card.",
					Image:       assetBase + "/modena_woocommerce_banklinks_eng.png",
					IconAlt:     "Bank & Card Payments",
				},
				"ru": {
					Title:       "Интернетбанк или карта",
					Description: "Оплатите через интернет-банк или картой.",
					Image:       assetBase + "/modena_woocommerce_banklinks_rus.png",
					IconAlt:     "Интернетбанк или карта",
				},
				"et": {
					Title:       "Panga- ja kaardimaksed",
					Description: "Maksa pangalingi või kaardiga.",
					Image:       assetBase + "/modena_woocommerce_banklinks_est.png",
					IconAlt:     "Panga- ja kaardimaksed",
				},
			},
		},
	}
}
