package directory

import "github.com/bobmcallan/stocktrack/internal/models"

// seedStocks is the built-in coded directory. A directory file merges over it.
var seedStocks = []models.StockIdentity{
	{Code: "2330", Name: "台積電", Sector: "晶圓代工"},
	{Code: "2317", Name: "鴻海", Sector: "AI伺服器"},
	{Code: "2454", Name: "聯發科", Sector: "IC設計"},
	{Code: "2382", Name: "廣達", Sector: "AI伺服器"},
	{Code: "3231", Name: "緯創", Sector: "AI伺服器"},
	{Code: "2603", Name: "長榮", Sector: "航運"},
	{Code: "3008", Name: "大立光", Sector: "光學鏡頭"},
	{Code: "3037", Name: "欣興", Sector: "ABF載板"},
	{Code: "3034", Name: "聯詠", Sector: "IC設計"},
	{Code: "2379", Name: "瑞昱", Sector: "IC設計"},
	{Code: "2303", Name: "聯電", Sector: "晶圓代工"},
	{Code: "2881", Name: "富邦金", Sector: "金融"},
	{Code: "2308", Name: "台達電", Sector: "電源/EV"},
	{Code: "1519", Name: "華城", Sector: "重電"},
	{Code: "1513", Name: "中興電", Sector: "重電"},
	{Code: "2449", Name: "京元電子", Sector: "封測"},
	{Code: "6290", Name: "良維", Sector: "連接器"},
	{Code: "6781", Name: "AES-KY", Sector: "電池模組"},
	{Code: "2427", Name: "三商電", Sector: "系統整合"},
	{Code: "2357", Name: "華碩", Sector: "AI伺服器"},
	{Code: "2356", Name: "英業達", Sector: "AI伺服器"},
	{Code: "6669", Name: "緯穎", Sector: "AI伺服器"},
	{Code: "3035", Name: "智原", Sector: "IP矽智財"},
	{Code: "3443", Name: "創意", Sector: "IP矽智財"},
	{Code: "3661", Name: "世芯-KY", Sector: "IP矽智財"},
	{Code: "3017", Name: "奇鋐", Sector: "散熱"},
	{Code: "3324", Name: "雙鴻", Sector: "散熱"},
	{Code: "2345", Name: "智邦", Sector: "網通"},
	{Code: "3711", Name: "日月光投控", Sector: "封測"},
	{Code: "2368", Name: "金像電", Sector: "PCB"},
	{Code: "2383", Name: "台光電", Sector: "CCL銅箔"},
	{Code: "6213", Name: "聯茂", Sector: "CCL銅箔"},
	{Code: "6805", Name: "富世達", Sector: "軸承/散熱"},
	{Code: "2353", Name: "宏碁", Sector: "AI PC"},
	{Code: "2324", Name: "仁寶", Sector: "組裝代工"},
	{Code: "2301", Name: "光寶科", Sector: "電源"},
	{Code: "8299", Name: "群聯", Sector: "記憶體控制"},
	{Code: "8069", Name: "元太", Sector: "電子紙"},
	{Code: "6488", Name: "環球晶", Sector: "矽晶圓"},
	{Code: "3293", Name: "鈊象", Sector: "遊戲"},
	{Code: "3529", Name: "力旺", Sector: "IP矽智財"},
	{Code: "3131", Name: "弘塑", Sector: "CoWoS設備"},
	{Code: "5274", Name: "信驊", Sector: "IC設計"},
	{Code: "5347", Name: "世界", Sector: "晶圓代工"},
	{Code: "4966", Name: "譜瑞-KY", Sector: "IC設計"},
	{Code: "6274", Name: "台燿", Sector: "CCL銅箔"},
	{Code: "3374", Name: "精材", Sector: "封測"},
	{Code: "6147", Name: "頎邦", Sector: "封測"},
	{Code: "5483", Name: "中美晶", Sector: "矽晶圓"},
	{Code: "3105", Name: "穩懋", Sector: "砷化鎵"},
	{Code: "6223", Name: "旺矽", Sector: "探針卡"},
	{Code: "3081", Name: "聯亞", Sector: "光通訊"},
	{Code: "3450", Name: "聯鈞", Sector: "CPO/光通訊"},
	{Code: "4979", Name: "華星光", Sector: "光通訊"},
	{Code: "5289", Name: "宜鼎", Sector: "工控記憶體"},
	{Code: "4760", Name: "勤凱", Sector: "被動元件/材料"},
	{Code: "6683", Name: "雍智科技", Sector: "測試介面"},
	{Code: "8996", Name: "高力", Sector: "散熱"},
	{Code: "6187", Name: "萬潤", Sector: "CoWoS設備"},
	{Code: "3583", Name: "辛耘", Sector: "CoWoS設備"},
	{Code: "6138", Name: "茂達", Sector: "IC設計"},
	{Code: "3680", Name: "家登", Sector: "半導體設備"},
	{Code: "5425", Name: "台半", Sector: "二極體"},
	{Code: "3260", Name: "威剛", Sector: "記憶體"},
	{Code: "8046", Name: "南電", Sector: "ABF載板"},
	{Code: "1815", Name: "富喬", Sector: "PCB材料"},
	{Code: "4768", Name: "晶呈科技", Sector: "半導體特氣"},
	{Code: "8112", Name: "至上", Sector: "IC通路"},
	{Code: "5314", Name: "世紀", Sector: "IC設計"},
	{Code: "3162", Name: "精確", Sector: "車用零組件"},
	{Code: "4971", Name: "IET-KY", Sector: "砷化鎵"},
	{Code: "3167", Name: "大量", Sector: "半導體設備"},
	{Code: "8021", Name: "尖點", Sector: "PCB鑽針"},
}

// seedSectors maps names that have no known code to a sector.
var seedSectors = [][2]string{
	{"力積電", "晶圓代工"},
	{"M31", "IP矽智財"},
	{"晶心科", "IP矽智財"},
	{"巨有科技", "IP矽智財"},
	{"金麗科", "IP矽智財"},
	{"愛普", "IP/記憶體"},
	{"伊雲谷", "雲端/IP"},
	{"祥碩", "IC設計"},
	{"矽力-KY", "IC設計"},
	{"新唐", "IC設計"},
	{"天鈺", "IC設計"},
	{"晶豪科", "IC設計"},
	{"威盛", "IC設計"},
	{"矽創", "IC設計"},
	{"原相", "IC設計"},
	{"敦泰", "IC設計"},
	{"凌陽", "IC設計"},
	{"聯陽", "IC設計"},
	{"揚智", "IC設計"},
	{"達發", "IC設計"},
	{"義隆", "IC設計"},
	{"致新", "IC設計"},
	{"偉詮電", "IC設計"},
	{"通嘉", "IC設計"},
	{"點序", "IC設計"},
	{"創惟", "IC設計"},
	{"鈺創", "IC設計"},
	{"九暘", "IC設計"},
	{"普誠", "IC設計"},
	{"安國", "神盾集團"},
	{"神盾", "神盾集團"},
	{"安格", "神盾集團"},
	{"迅杰", "神盾集團"},
	{"芯鼎", "神盾集團"},
	{"十銓", "記憶體模組"},
	{"宇瞻", "記憶體模組"},
	{"創見", "記憶體模組"},
	{"華邦電", "記憶體"},
	{"南亞科", "記憶體"},
	{"旺宏", "記憶體"},
	{"品安", "記憶體模組"},
	{"廣穎", "記憶體模組"},
	{"健策", "散熱"},
	{"建準", "散熱"},
	{"力致", "散熱"},
	{"泰碩", "散熱"},
	{"元山", "散熱"},
	{"尼得科超眾", "散熱"},
	{"協禧", "散熱"},
	{"廣運", "散熱/自動化"},
	{"動力-KY", "散熱"},
	{"萬在", "散熱"},
	{"技嘉", "AI伺服器"},
	{"微星", "板卡/伺服器"},
	{"和碩", "組裝代工"},
	{"神達", "伺服器"},
	{"藍天", "NB代工"},
	{"勤誠", "機殼"},
	{"川湖", "導軌"},
	{"營邦", "機殼"},
	{"晟銘電", "機殼"},
	{"迎廣", "機殼"},
	{"振發", "機殼"},
	{"富驊", "機殼"},
	{"旭品", "機殼"},
	{"上詮", "光通訊"},
	{"波若威", "光通訊"},
	{"光聖", "光通訊"},
	{"前鼎", "光通訊"},
	{"眾達-KY", "光通訊"},
	{"光環", "光通訊"},
	{"創威", "光通訊"},
	{"訊芯-KY", "CPO封測"},
	{"台通", "光通訊"},
	{"均華", "CoWoS設備"},
	{"致茂", "檢測設備"},
	{"閎康", "檢測分析"},
	{"宜特", "檢測分析"},
	{"京鼎", "設備"},
	{"帆宣", "設備"},
	{"亞翔", "廠務"},
	{"漢唐", "廠務"},
	{"志聖", "PCB/半導體設備"},
	{"均豪", "半導體設備"},
	{"鈦昇", "半導體設備"},
	{"群翊", "PCB設備"},
	{"牧德", "檢測設備"},
	{"瑞耘", "設備零組件"},
	{"千附精密", "設備零組件"},
	{"精測", "測試介面"},
	{"穎崴", "測試介面"},
	{"中探針", "探針"},
	{"士電", "重電"},
	{"亞力", "重電"},
	{"東元", "重電"},
	{"大同", "重電"},
	{"森崴能源", "綠能"},
	{"雲豹能源", "綠能"},
	{"世紀鋼", "風電"},
	{"上緯投控", "風電"},
	{"華新", "電線電纜"},
	{"大亞", "電線電纜"},
	{"合機", "電線電纜"},
	{"宏泰", "電線電纜"},
	{"泓德能源", "綠能"},
	{"貿聯-KY", "連接器"},
	{"信邦", "連接器"},
	{"維熹", "連接器"},
	{"宏致", "連接器"},
	{"優群", "連接器"},
	{"嘉澤", "連接器"},
	{"凡甲", "連接器"},
	{"詮欣", "連接器"},
	{"胡連", "車用連接器"},
	{"正崴", "連接器"},
	{"健鼎", "PCB"},
	{"定穎投控", "PCB"},
	{"博智", "PCB"},
	{"華通", "PCB"},
	{"楠梓電", "PCB"},
	{"燿華", "PCB"},
	{"敬鵬", "車用PCB"},
	{"瀚宇博", "PCB"},
	{"景碩", "ABF載板"},
	{"建榮", "PCB材料"},
	{"德宏", "PCB材料"},
	{"達興材料", "特用化學"},
	{"上品", "氟素設備"},
	{"三福化", "特用化學"},
	{"中華化", "特用化學"},
	{"永光", "特用化學"},
	{"勝一", "特用化學"},
	{"國巨", "被動元件"},
	{"華新科", "被動元件"},
	{"立隆電", "被動元件"},
	{"信昌電", "被動元件"},
	{"禾伸堂", "被動元件"},
	{"凱美", "被動元件"},
	{"大毅", "被動元件"},
	{"順達", "電池模組"},
	{"新普", "電池模組"},
	{"加百裕", "電池模組"},
	{"康舒", "電源"},
	{"飛宏", "充電樁"},
	{"立德", "電源"},
	{"劍麟", "車用零組件"},
	{"堤維西", "AM車燈"},
	{"東陽", "AM汽材"},
	{"帝寶", "AM車燈"},
	{"耿鼎", "AM鈑金"},
	{"精誠", "系統整合"},
	{"零壹", "資安"},
	{"邁達特", "系統整合"},
	{"凌華", "IPC/機器人"},
	{"樺漢", "IPC"},
	{"研華", "IPC"},
	{"廣積", "IPC"},
	{"友通", "IPC"},
	{"立端", "網安IPC"},
	{"安勤", "IPC"},
	{"新漢", "IPC"},
	{"振樺電", "IPC"},
	{"文曄", "IC通路"},
	{"大聯大", "IC通路"},
	{"所羅門", "機器人"},
	{"羅昇", "機器人"},
	{"盟立", "機器人"},
	{"昆盈", "機器人"},
	{"廣明", "機器人"},
	{"聰泰", "機器人"},
	{"圓剛", "機器人"},
	{"台灣精銳", "減速機"},
	{"中磊", "網通"},
	{"啟碁", "網通"},
	{"明泰", "網通"},
	{"正文", "網通"},
	{"合勤控", "網通"},
	{"神準", "網通"},
	{"智易", "網通"},
	{"友訊", "網通"},
	{"建漢", "網通"},
	{"宏捷科", "砷化鎵"},
	{"全新", "砷化鎵"},
	{"保瑞", "生技CDMO"},
	{"美時", "生技"},
	{"藥華藥", "生技"},
	{"合一", "生技"},
	{"北極星藥業-KY", "生技"},
	{"智擎", "生技"},
	{"台康生技", "生技"},
	{"高端疫苗", "生技"},
	{"陽明", "貨櫃航運"},
	{"萬海", "貨櫃航運"},
	{"長榮航", "航空"},
	{"華航", "航空"},
	{"星宇航空", "航空"},
	{"裕民", "散裝"},
	{"慧洋-KY", "散裝"},
	{"新興", "散裝"},
	{"國泰金", "金融"},
	{"中信金", "金融"},
	{"兆豐金", "金融"},
	{"開發金", "金融"},
	{"元大金", "金融"},
	{"玉山金", "金融"},
	{"臺企銀", "金融"},
	{"新光金", "金融"},
	{"台新金", "金融"},
	{"永豐金", "金融"},
	{"亞光", "光學"},
	{"先進光", "光學"},
	{"中鋼", "鋼鐵"},
	{"台泥", "水泥"},
	{"統一", "食品"},
	{"美利達", "自行車"},
	{"巨大", "自行車"},
	{"豐泰", "製鞋"},
	{"寶成", "製鞋"},
	{"京元電", "封測"},
	{"日月光", "封測"},
}
